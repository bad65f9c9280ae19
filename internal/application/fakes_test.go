package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"
)

type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]*domain.Tenant
	findErr error
}

func newFakeTenantRepo(tenants ...*domain.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: map[string]*domain.Tenant{}}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepo) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.tenants[id], nil
}

func (r *fakeTenantRepo) FindByStoreURL(ctx context.Context, storeURL string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.StoreURL == storeURL {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTenantRepo) AttachCredential(ctx context.Context, id string, accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.AccessToken = accessToken
	t.Status = domain.TenantConnected
	return nil
}

func (r *fakeTenantRepo) ListConnected(ctx context.Context) ([]*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Tenant
	for _, t := range r.tenants {
		if t.IsConnected() {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []*domain.Job
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, job *domain.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	cp := *job
	p.jobs = append(p.jobs, &cp)
	return nil
}

func (p *fakePublisher) published() []*domain.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.Job(nil), p.jobs...)
}

type fakeFailedJobs struct {
	mu      sync.Mutex
	jobs    map[string]*domain.FailedJob
	order   []string
	saveErr error
}

func newFakeFailedJobs() *fakeFailedJobs {
	return &fakeFailedJobs{jobs: map[string]*domain.FailedJob{}}
}

func (f *fakeFailedJobs) Save(ctx context.Context, job *domain.FailedJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if job.ID == "" {
		job.ID = "fj-" + string(rune('a'+len(f.order)))
	}
	f.jobs[job.ID] = job
	f.order = append(f.order, job.ID)
	return nil
}

func (f *fakeFailedJobs) List(ctx context.Context, limit int) ([]*domain.FailedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.FailedJob
	for _, id := range f.order {
		if j, ok := f.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeFailedJobs) Get(ctx context.Context, id string) (*domain.FailedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id], nil
}

func (f *fakeFailedJobs) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return domain.ErrFailedJobNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeFailedJobs) all() []*domain.FailedJob {
	out, _ := f.List(context.Background(), 0)
	return out
}

type fakeDelivery struct {
	body     []byte
	acked    bool
	rejected bool
}

func (d *fakeDelivery) Body() []byte { return d.body }

func (d *fakeDelivery) Ack(ctx context.Context) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Reject(ctx context.Context) error {
	d.rejected = true
	return nil
}

type stubReconciler struct {
	jobType domain.JobType
	err     error
	calls   int
}

func (r *stubReconciler) CanHandle(jobType domain.JobType) bool { return jobType == r.jobType }

func (r *stubReconciler) Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error) {
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return len(items), nil
}

type fakeWebhookLog struct {
	events []*domain.WebhookEvent
	err    error
}

func (l *fakeWebhookLog) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	if l.err != nil {
		return l.err
	}
	l.events = append(l.events, event)
	return nil
}

type fakeSource struct {
	customers [][]json.RawMessage
	products  [][]json.RawMessage
	orders    [][]json.RawMessage
	failOn    string
}

func (s *fakeSource) emit(resource string, pages [][]json.RawMessage, page ports.PageFunc) error {
	if s.failOn == resource {
		return errors.New("shopify unavailable")
	}
	for _, p := range pages {
		if err := page(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSource) FetchCustomers(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	return s.emit("customers", s.customers, page)
}

func (s *fakeSource) FetchProducts(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	return s.emit("products", s.products, page)
}

func (s *fakeSource) FetchOrders(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	return s.emit("orders", s.orders, page)
}

var (
	_ ports.TenantRepository    = (*fakeTenantRepo)(nil)
	_ ports.JobPublisher        = (*fakePublisher)(nil)
	_ ports.FailedJobRepository = (*fakeFailedJobs)(nil)
	_ ports.Delivery            = (*fakeDelivery)(nil)
	_ ports.StorefrontSource    = (*fakeSource)(nil)
	_ Reconciler                = (*stubReconciler)(nil)
)
