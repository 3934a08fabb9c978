package infra

import "testing"

func TestGetRedisBeforeInitReturnsNil(t *testing.T) {
	saved := globalRedis
	globalRedis = nil
	t.Cleanup(func() { globalRedis = saved })

	if client := GetRedis(); client != nil {
		t.Fatalf("expected nil client before InitRedis, got %T", client)
	}
	if err := HealthCheckRedis(); err == nil {
		t.Fatal("expected health check to fail without redis")
	}
}
