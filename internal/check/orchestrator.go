package check

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Orchestrator runs the validator over every stored credential with bounded
// parallelism. At most one run is active at a time.
type Orchestrator struct {
	store     CredentialStore
	proxies   ProxyLoader
	validator *Validator
	history   RunHistory
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	limit     int64

	running atomic.Bool
}

// NewOrchestrator creates an Orchestrator. limit is the maximum number of
// concurrent validations; values below 1 are raised to 1. history may be nil.
func NewOrchestrator(store CredentialStore, proxies ProxyLoader, validator *Validator, history RunHistory, logger Logger, clock Clock, idgen IDGenerator, limit int) *Orchestrator {
	if limit < 1 {
		limit = 1
	}
	return &Orchestrator{
		store:     store,
		proxies:   proxies,
		validator: validator,
		history:   history,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		limit:     int64(limit),
	}
}

// Running reports whether a run is in progress.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Run validates every discovered credential and returns the aggregated report.
//
// Run fails before dispatching anything with ErrRunInProgress if another run
// is active, ErrNoProxies if the proxy list is empty, or ErrNoCandidates if
// no session files exist. Per-credential failures never fail the run; they
// are reported as outcomes.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)

	proxies, err := o.proxies.LoadProxies()
	if err != nil {
		return nil, fmt.Errorf("loading proxies: %w", err)
	}
	pool := NewProxyPool(proxies)
	if pool.Len() == 0 {
		return nil, ErrNoProxies
	}
	o.logger.Info("proxies loaded", "count", pool.Len())

	identities, err := o.store.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering sessions: %w", err)
	}
	if len(identities) == 0 {
		return nil, ErrNoCandidates
	}

	report := &RunReport{
		ID:        o.idgen.New(),
		StartedAt: o.clock.Now(),
		Results:   make([]Result, len(identities)),
	}
	o.logger.Info("run started", "run_id", report.ID, "sessions", len(identities), "limit", o.limit)

	creds := make([]*Credential, len(identities))
	for i, identity := range identities {
		report.Results[i].Phone = identity
		cred, err := o.store.LoadOrCreate(ctx, identity)
		if err != nil {
			o.logger.Error("loading credential", "identity", identity, "error", err)
			report.Results[i].Outcome = OutcomeMalformed(err.Error())
			continue
		}
		creds[i] = cred
	}

	o.dispatch(ctx, pool, creds, report.Results)

	report.FinishedAt = o.clock.Now()
	if o.history != nil {
		if err := o.history.RecordRun(report); err != nil {
			o.logger.Error("recording run history", "run_id", report.ID, "error", err)
		}
	}

	o.logger.Info("run finished", "run_id", report.ID, "success", report.Success(), "duration", report.Duration())
	return report, nil
}

// dispatch runs one task per non-nil credential, writing each result into
// its slot, and returns once every started task has finished.
func (o *Orchestrator) dispatch(ctx context.Context, pool *ProxyPool, creds []*Credential, results []Result) {
	sem := semaphore.NewWeighted(o.limit)
	var wg sync.WaitGroup

	for i, cred := range creds {
		if cred == nil {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Outcome = OutcomeUnexpected(fmt.Sprintf("not dispatched: %v", err))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = o.runTask(ctx, pool, cred)
		}()
	}

	wg.Wait()
}

// runTask draws a proxy and validates one credential. A panic is contained
// here so that it cannot take down sibling tasks.
func (o *Orchestrator) runTask(ctx context.Context, pool *ProxyPool, cred *Credential) (res Result) {
	res.Phone = cred.Identity
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("task panicked", "identity", cred.Identity, "panic", r)
			res.Outcome = OutcomeUnexpected(fmt.Sprint(r))
		}
	}()

	var proxy *Proxy
	if p, ok := pool.Pick(); ok {
		proxy = &p
		res.Proxy = p.Addr()
	}

	outcome, moved := o.validator.validate(ctx, cred, proxy)
	res.Outcome = outcome
	res.Quarantined = len(moved) > 0
	return res
}
