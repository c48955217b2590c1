package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
)

var setupTestEnvironments = map[string]bool{}
var setupTestLock sync.Mutex

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once. a missing telemetry.json5 is not an error in
// tests, spans and metrics then go to the no-op providers.
func SetupForTesting(t testing.TB, serviceName string) func() {
	setupTestLock.Lock()
	defer setupTestLock.Unlock()

	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	ctx := context.Background()
	tel, err := SetupFromEnv(ctx, serviceName)
	if errors.Is(err, ErrNoConfig) {
		return func() {}
	}
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := tel.Shutdown(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}
}
