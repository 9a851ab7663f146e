package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "id", 10, 20, 4)
	r.OnFieldComputed(ctx, "id", "proximity", 100, 100, time.Second)
	r.OnLayerDrawn(ctx, "id", "edges", 1, 0, time.Millisecond)
	r.OnRenderComplete(ctx, "id", time.Second, nil)

	p := NoopPipelineHooks{}
	p.OnLoadComplete(ctx, "graph.json", 10, 20, time.Millisecond, nil)
	p.OnArtifact(ctx, "png", 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)
	if Render() != custom {
		t.Error("SetRenderHooks(nil) should not replace existing hooks")
	}
	Reset()
}

func TestConcurrentAccess(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetRenderHooks(&testRenderHooks{})
		}()
		go func() {
			defer wg.Done()
			Render().OnLayerDrawn(context.Background(), "id", "nodes", 0, 0, 0)
		}()
	}
	wg.Wait()
}

type testRenderHooks struct {
	NoopRenderHooks
	calls int
}

type testCacheHooks struct {
	NoopCacheHooks
	calls int
}
