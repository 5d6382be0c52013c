package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
	"quantcloud-be/internal/repository/contract"
	"quantcloud-be/internal/repository/specification"
	"quantcloud-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the database, shared by all
// repositories of a test. Reads return copies so mutations only become
// visible through Update, mirroring the real persistence behavior.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]entity.Account
	jobs     map[uuid.UUID]entity.Job
	claimed  map[uuid.UUID]bool
	ledger   []entity.LedgerEntry
	files    map[uuid.UUID]entity.ModelFile
	tokens   map[uuid.UUID]entity.DownloadToken
	reports  map[uuid.UUID]entity.QuantizationReport
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]entity.Account),
		jobs:     make(map[uuid.UUID]entity.Job),
		claimed:  make(map[uuid.UUID]bool),
		files:    make(map[uuid.UUID]entity.ModelFile),
		tokens:   make(map[uuid.UUID]entity.DownloadToken),
		reports:  make(map[uuid.UUID]entity.QuantizationReport),
	}
}

type memFactory struct {
	store *memStore
}

func newMemFactory(store *memStore) unitofwork.RepositoryFactory {
	return &memFactory{store: store}
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{store: f.store}
}

type memUow struct {
	store *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) AccountRepository() contract.AccountRepository {
	return &memAccountRepo{store: u.store}
}
func (u *memUow) LedgerRepository() contract.LedgerRepository {
	return &memLedgerRepo{store: u.store}
}
func (u *memUow) JobRepository() contract.JobRepository {
	return &memJobRepo{store: u.store}
}
func (u *memUow) ModelFileRepository() contract.ModelFileRepository {
	return &memFileRepo{store: u.store}
}
func (u *memUow) DownloadTokenRepository() contract.DownloadTokenRepository {
	return &memTokenRepo{store: u.store}
}
func (u *memUow) QuantizationReportRepository() contract.QuantizationReportRepository {
	return &memReportRepo{store: u.store}
}

func asUUID(v interface{}) (uuid.UUID, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, true
	case *uuid.UUID:
		if x == nil {
			return uuid.Nil, false
		}
		return *x, true
	case string:
		id, err := uuid.Parse(x)
		return id, err == nil
	}
	return uuid.Nil, false
}

// ---- accounts ----

type memAccountRepo struct {
	store *memStore
}

func (r *memAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts[account.Id] = *account
	return nil
}

func (r *memAccountRepo) Update(ctx context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts[account.Id] = *account
	return nil
}

func matchAccount(a entity.Account, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return a.Id == s.ID
	case specification.OwnedBy:
		return a.UserId == s.UserID
	case specification.FilterBy:
		if s.Field == "user_id" {
			id, ok := asUUID(s.Value)
			return ok && a.UserId == id
		}
		return false
	}
	return true
}

func (r *memAccountRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.accounts {
		ok := true
		for _, spec := range specs {
			if !matchAccount(a, spec) {
				ok = false
				break
			}
		}
		if ok {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) FindOneByUserIdForUpdate(ctx context.Context, userId uuid.UUID) (*entity.Account, error) {
	return r.FindOne(ctx, specification.OwnedBy{UserID: userId})
}

// ---- ledger ----

type memLedgerRepo struct {
	store *memStore
}

func (r *memLedgerRepo) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.ledger = append(r.store.ledger, *entry)
	return nil
}

func matchLedger(e entity.LedgerEntry, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.FilterBy:
		switch s.Field {
		case "account_id":
			id, ok := asUUID(s.Value)
			return ok && e.AccountId == id
		case "job_id":
			id, ok := asUUID(s.Value)
			return ok && e.JobId != nil && *e.JobId == id
		case "reason":
			switch v := s.Value.(type) {
			case entity.LedgerReason:
				return e.Reason == v
			case string:
				return string(e.Reason) == v
			}
			return false
		}
		return false
	case specification.OrderBy, specification.Pagination:
		return true
	}
	return true
}

func (r *memLedgerRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.LedgerEntry
	for i := range r.store.ledger {
		e := r.store.ledger[i]
		ok := true
		for _, spec := range specs {
			if !matchLedger(e, spec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, &e)
		}
	}
	for _, spec := range specs {
		if o, isOrder := spec.(specification.OrderBy); isOrder && o.Field == "created_at" {
			sort.SliceStable(out, func(i, j int) bool {
				if o.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		}
	}
	for _, spec := range specs {
		if p, isPage := spec.(specification.Pagination); isPage {
			out = paginateLedger(out, p)
		}
	}
	return out, nil
}

func paginateLedger(entries []*entity.LedgerEntry, p specification.Pagination) []*entity.LedgerEntry {
	if p.Offset >= len(entries) {
		return nil
	}
	entries = entries[p.Offset:]
	if p.Limit > 0 && p.Limit < len(entries) {
		entries = entries[:p.Limit]
	}
	return entries
}

func (r *memLedgerRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	entries, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

// ---- jobs ----

type memJobRepo struct {
	store *memStore
}

func (r *memJobRepo) Create(ctx context.Context, job *entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jobs[job.Id] = *job
	return nil
}

func (r *memJobRepo) Update(ctx context.Context, job *entity.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.jobs[job.Id] = *job
	delete(r.store.claimed, job.Id)
	return nil
}

func (r *memJobRepo) UpdateFromStatus(ctx context.Context, job *entity.Job, from entity.JobStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.jobs[job.Id]
	if !ok || current.Status != from {
		return false, nil
	}
	r.store.jobs[job.Id] = *job
	delete(r.store.claimed, job.Id)
	return true, nil
}

func (r *memJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.jobs, id)
	return nil
}

func matchJob(j entity.Job, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return j.Id == s.ID
	case specification.OwnedBy:
		return j.UserId == s.UserID
	case specification.ByStatus:
		return j.Status == s.Status
	case specification.StartedBefore:
		return j.StartedAt != nil && j.StartedAt.Before(s.Cutoff)
	case specification.FilterBy:
		if s.Field == "input_file_id" {
			id, ok := asUUID(s.Value)
			return ok && j.InputFileId == id
		}
		return false
	}
	return true
}

func (r *memJobRepo) findAllLocked(specs ...specification.Specification) []*entity.Job {
	var out []*entity.Job
	for _, j := range r.store.jobs {
		job := j
		ok := true
		for _, spec := range specs {
			if !matchJob(job, spec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, &job)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *memJobRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	jobs := r.findAllLocked(specs...)
	if len(jobs) == 0 {
		return nil, nil
	}
	return jobs[0], nil
}

func (r *memJobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	jobs := r.findAllLocked(specs...)
	for _, spec := range specs {
		if o, isOrder := spec.(specification.OrderBy); isOrder && o.Field == "created_at" && o.Desc {
			sort.SliceStable(jobs, func(i, j int) bool {
				return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
			})
		}
	}
	for _, spec := range specs {
		if p, isPage := spec.(specification.Pagination); isPage {
			if p.Offset >= len(jobs) {
				return nil, nil
			}
			jobs = jobs[p.Offset:]
			if p.Limit > 0 && p.Limit < len(jobs) {
				jobs = jobs[:p.Limit]
			}
		}
	}
	return jobs, nil
}

func (r *memJobRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.findAllLocked(specs...))), nil
}

// ClaimPending mirrors the SKIP LOCKED claim: best plan priority first,
// oldest first within a tier, and a row one claimer holds is invisible
// to every other claimer until the claim settles.
func (r *memJobRepo) ClaimPending(ctx context.Context) (*entity.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.findAllLocked(specification.ByStatus{Status: entity.JobStatusPending})
	pending := all[:0]
	for _, j := range all {
		if !r.store.claimed[j.Id] {
			pending = append(pending, j)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	priority := func(j *entity.Job) int {
		for _, a := range r.store.accounts {
			if a.UserId == j.UserId {
				return a.Plan.QueuePriority()
			}
		}
		return entity.PlanFree.QueuePriority()
	}
	sort.SliceStable(pending, func(i, j int) bool {
		pi, pj := priority(pending[i]), priority(pending[j])
		if pi != pj {
			return pi > pj
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	r.store.claimed[pending[0].Id] = true
	return pending[0], nil
}

// ---- files ----

type memFileRepo struct {
	store *memStore
}

func (r *memFileRepo) Create(ctx context.Context, file *entity.ModelFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.files[file.Id] = *file
	return nil
}

func (r *memFileRepo) Update(ctx context.Context, file *entity.ModelFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.files[file.Id] = *file
	return nil
}

func (r *memFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.files, id)
	return nil
}

func matchFile(f entity.ModelFile, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return f.Id == s.ID
	case specification.OwnedBy:
		return f.UserId == s.UserID
	case specification.ExpiredBefore:
		return f.ExpiresAt != nil && f.ExpiresAt.Before(s.Now)
	case specification.ByChecksum:
		return f.ChecksumSHA256 == s.Checksum
	case specification.FilterBy:
		if s.Field == "user_id" {
			id, ok := asUUID(s.Value)
			return ok && f.UserId == id
		}
		return false
	}
	return true
}

func (r *memFileRepo) findAllLocked(specs ...specification.Specification) []*entity.ModelFile {
	var out []*entity.ModelFile
	for _, f := range r.store.files {
		file := f
		ok := true
		for _, spec := range specs {
			if !matchFile(file, spec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, &file)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *memFileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModelFile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	files := r.findAllLocked(specs...)
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

func (r *memFileRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModelFile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.findAllLocked(specs...), nil
}

func (r *memFileRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.findAllLocked(specs...))), nil
}

// ---- tokens ----

type memTokenRepo struct {
	store *memStore
}

func (r *memTokenRepo) Create(ctx context.Context, token *entity.DownloadToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tokens[token.Id] = *token
	return nil
}

func (r *memTokenRepo) Update(ctx context.Context, token *entity.DownloadToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tokens[token.Id] = *token
	return nil
}

func matchToken(t entity.DownloadToken, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return t.Id == s.ID
	case specification.FilterBy:
		switch s.Field {
		case "token":
			v, ok := s.Value.(string)
			return ok && t.Token == v
		case "file_id":
			id, ok := asUUID(s.Value)
			return ok && t.FileId == id
		}
		return false
	}
	return true
}

func (r *memTokenRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DownloadToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tokens {
		token := t
		ok := true
		for _, spec := range specs {
			if !matchToken(token, spec) {
				ok = false
				break
			}
		}
		if ok {
			return &token, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tokens[id]
	if !ok || t.ConsumedAt != nil || t.RevokedAt != nil {
		return false, nil
	}
	t.ConsumedAt = &now
	r.store.tokens[id] = t
	return true, nil
}

func (r *memTokenRepo) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for id, t := range r.store.tokens {
		if t.RevokedAt == nil && t.ExpiresAt.Before(now) {
			revokedAt := now
			t.RevokedAt = &revokedAt
			r.store.tokens[id] = t
			n++
		}
	}
	return n, nil
}

func (r *memTokenRepo) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tokens[id]
	if !ok {
		return dto.ErrNotFound
	}
	t.RevokedAt = &now
	r.store.tokens[id] = t
	return nil
}

// ---- reports ----

type memReportRepo struct {
	store *memStore
}

func (r *memReportRepo) Create(ctx context.Context, report *entity.QuantizationReport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.reports[report.Id] = *report
	return nil
}

func (r *memReportRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuantizationReport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rep := range r.store.reports {
		report := rep
		ok := true
		for _, spec := range specs {
			if f, isFilter := spec.(specification.FilterBy); isFilter && f.Field == "job_id" {
				id, valid := asUUID(f.Value)
				if !valid || report.JobId != id {
					ok = false
					break
				}
			}
		}
		if ok {
			return &report, nil
		}
	}
	return nil, nil
}

// ---- shared test helpers ----

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeObjectStore stands in for the bucket. Presigned URLs carry the
// bucket host so handlers can assert on them without touching the network.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) url(key string) string {
	return "https://test-bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=test"
}

func (s *fakeObjectStore) PresignPut(ctx context.Context, key, checksumSHA256 string, expiry time.Duration) (string, error) {
	return s.url(key), nil
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.url(key), nil
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = buf
	return nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeObjectStore) ObjectSize(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[key]
	if !ok {
		return 0, dto.ErrNotFound
	}
	return int64(len(body)), nil
}

func (s *fakeObjectStore) ChecksumSHA256(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[key]
	if !ok {
		return "", dto.ErrNotFound
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func (s *fakeObjectStore) Bucket() string { return "test-bucket" }

// fakePublisher captures completion messages in place of the watermill bus.
type fakePublisher struct {
	mu       sync.Mutex
	messages []*dto.JobCompletedMessage
}

func (p *fakePublisher) PublishJobCompleted(msg *dto.JobCompletedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func seedAccount(store *memStore, userId uuid.UUID, plan entity.PlanTier) *entity.Account {
	now := time.Now()
	a := entity.Account{
		Id:             uuid.New(),
		UserId:         userId,
		Plan:           plan,
		MonthlyCredits: plan.MonthlyCredits(),
		PeriodStart:    now,
		PeriodEnd:      now.AddDate(0, 0, 30),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	store.accounts[a.Id] = a
	return &a
}

func seedFile(store *memStore, userId uuid.UUID, format entity.ModelFormat, size int64, params *float64) *entity.ModelFile {
	f := entity.ModelFile{
		Id:               uuid.New(),
		UserId:           userId,
		OriginalFilename: "model.bin",
		StoragePath:      "models/test/model.bin",
		FileSize:         size,
		ChecksumSHA256:   "abc",
		Format:           format,
		ParameterCount:   params,
		CreatedAt:        time.Now(),
	}
	store.files[f.Id] = f
	return &f
}

func seedPendingJob(store *memStore, userId uuid.UUID, file *entity.ModelFile, method entity.QuantizationMethod, output entity.ModelFormat, cost int, createdAt time.Time) *entity.Job {
	j := entity.Job{
		Id:             uuid.New(),
		UserId:         userId,
		Name:           "test job",
		Status:         entity.JobStatusPending,
		Method:         method,
		InputFormat:    file.Format,
		OutputFormat:   output,
		InputFileId:    file.Id,
		OriginalSize:   file.FileSize,
		CreditsCharged: cost,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	store.jobs[j.Id] = j
	return &j
}
