package controller

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	toolscache "k8s.io/client-go/tools/cache"
)

func TestClassifyWatchError(t *testing.T) {
	gr := schema.GroupResource{Group: "secretmanager.octopilot.io", Resource: "managedconfigs"}

	tests := []struct {
		name string
		err  error
		want WatchAction
	}{
		{"unauthorized", apierrors.NewUnauthorized("bad token"), WatchActionLogAndWait},
		{"not found", apierrors.NewNotFound(gr, "x"), WatchActionTolerate},
		{"gone", apierrors.NewResourceExpired("resourceVersion too old"), WatchActionRestart},
		{"too many requests", apierrors.NewTooManyRequests("slow down", 5), WatchActionBackoffRestart},
		{"internal", apierrors.NewInternalError(nil), WatchActionRestart},
	}

	for _, tt := range tests {
		if got := ClassifyWatchError(tt.err); got != tt.want {
			t.Errorf("%s: ClassifyWatchError = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestNextWatchBackoffGrowsAndCaps(t *testing.T) {
	d := NextWatchBackoff(0)
	if d != WatchBackoffFloor {
		t.Fatalf("expected floor, got %v", d)
	}
	for i := 0; i < 10; i++ {
		d = NextWatchBackoff(d)
	}
	if d != WatchBackoffCeiling {
		t.Fatalf("expected ceiling after repeated growth, got %v", d)
	}
	if time.Duration(0) >= WatchBackoffFloor {
		t.Fatalf("sanity check on floor constant failed")
	}
}

func TestNewWatchErrorHandlerDoesNotPanicOnNonBackoffActions(t *testing.T) {
	gr := schema.GroupResource{Group: "secretmanager.octopilot.io", Resource: "managedconfigs"}
	store := toolscache.NewStore(toolscache.MetaNamespaceKeyFunc)
	reflector := toolscache.NewNamedReflector("test-reflector", &toolscache.ListWatch{}, nil, store, 0)

	handler := NewWatchErrorHandler(logr.Discard())
	handler(reflector, apierrors.NewUnauthorized("bad token"))
	handler(reflector, apierrors.NewNotFound(gr, "x"))
	handler(reflector, apierrors.NewResourceExpired("resourceVersion too old"))
}
