package metricscollector

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fluxorio/actorrt/pkg/actor"
	"github.com/fluxorio/actorrt/pkg/metrics"
)

type fakeCtx struct {
	actor.ServiceContext
	repeatInterval int64
	repeatTimes    int
	metrics        *metrics.Metrics
	counts         []int32
}

func (f *fakeCtx) Repeat(durationMS int64, times int) (uint64, error) {
	f.repeatInterval = durationMS
	f.repeatTimes = times
	return 1, nil
}

func (f *fakeCtx) Metrics() *metrics.Metrics { return f.metrics }
func (f *fakeCtx) ServiceCounts() []int32    { return f.counts }

func TestService_StartArmsForeverRepeat(t *testing.T) {
	svc := New()
	ctx := &fakeCtx{}
	if ok := svc.Init(ctx, []byte(`{"interval_ms":250}`)); !ok {
		t.Fatal("Init() = false, want true")
	}
	svc.Start()

	if ctx.repeatInterval != 250 {
		t.Fatalf("Repeat() interval = %d, want 250", ctx.repeatInterval)
	}
	if ctx.repeatTimes != 0 {
		t.Fatalf("Repeat() times = %d, want 0 (forever)", ctx.repeatTimes)
	}
}

func TestService_OnTimerPublishesServiceCountGauge(t *testing.T) {
	svc := New()
	m := metrics.New()
	ctx := &fakeCtx{metrics: m, counts: []int32{0, 3, 1}}
	svc.Init(ctx, nil)

	svc.OnTimer(1, false)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	body := rec.Body.String()
	if !strings.Contains(body, `actorrt_service_count{runtime="actorrt",worker="1"} 3`) {
		t.Fatalf("metrics output missing worker 1 count:\n%s", body)
	}
	if !strings.Contains(body, `actorrt_service_count{runtime="actorrt",worker="2"} 1`) {
		t.Fatalf("metrics output missing worker 2 count:\n%s", body)
	}
}

func TestService_OnTimerNoopsWithoutMetrics(t *testing.T) {
	svc := New()
	ctx := &fakeCtx{counts: []int32{0, 1}}
	svc.Init(ctx, nil)
	svc.OnTimer(1, false)
}
