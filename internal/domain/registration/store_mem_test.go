package registration

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/hms/hms/internal/platform/apperr"
)

// memStore is an in-memory Store. Writes are staged per transaction and only
// applied on commit, where the unique constraints of the person table are
// re-checked against committed rows the way the database indexes would.
type memStore struct {
	mu              sync.Mutex
	persons         map[string]*Person // keyed by lower-cased username
	contracts       map[int64]*EmployeeContract
	roles           map[string]*RoleRecord
	specializations map[int64]string
	nextContractID  int64

	// failAt makes the matching step return a storage error.
	failAt string
	// inserts counts every insert call, committed or not.
	inserts int
}

func newMemStore() *memStore {
	return &memStore{
		persons:   make(map[string]*Person),
		contracts: make(map[int64]*EmployeeContract),
		roles:     make(map[string]*RoleRecord),
		specializations: map[int64]string{
			1: "Cardiology",
			2: "Neurology",
			3: "Pediatrics",
		},
	}
}

var errInjected = errors.New("connection reset by peer")

type storeCounts struct {
	persons, contracts, roles int
}

func (m *memStore) counts() storeCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return storeCounts{len(m.persons), len(m.contracts), len(m.roles)}
}

func (m *memStore) person(username string) (*Person, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[strings.ToLower(username)]
	return p, ok
}

func (m *memStore) role(username string) (*RoleRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[strings.ToLower(username)]
	return r, ok
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memTx{store: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *memStore) ListSpecializations(_ context.Context) ([]*Specialization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Specialization
	for id, name := range m.specializations {
		items = append(items, &Specialization{ID: id, Name: name})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *memStore) commit(tx *memTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAt == "commit" {
		return apperr.Storage("commit transaction", errInjected)
	}
	for _, p := range tx.persons {
		if err := m.conflictLocked(p); err != nil {
			return err
		}
	}
	for _, p := range tx.persons {
		m.persons[strings.ToLower(p.Username)] = p
	}
	for _, c := range tx.contracts {
		// Role records point at c.ID, so they see the final id too.
		m.nextContractID++
		c.ID = m.nextContractID
		m.contracts[c.ID] = c
	}
	for _, r := range tx.roles {
		m.roles[strings.ToLower(r.Username)] = r
	}
	return nil
}

func (m *memStore) conflictLocked(p *Person) error {
	if _, ok := m.persons[strings.ToLower(p.Username)]; ok {
		return &apperr.DuplicateFieldError{Field: "username"}
	}
	for _, existing := range m.persons {
		if existing.MobileNumber == p.MobileNumber {
			return &apperr.DuplicateFieldError{Field: "mobile_number"}
		}
		if existing.Email == p.Email {
			return &apperr.DuplicateFieldError{Field: "email"}
		}
	}
	return nil
}

type memTx struct {
	store     *memStore
	persons   []*Person
	contracts []*EmployeeContract
	roles     []*RoleRecord
}

func (t *memTx) anyPerson(match func(p *Person) bool) bool {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, p := range t.store.persons {
		if match(p) {
			return true
		}
	}
	for _, p := range t.persons {
		if match(p) {
			return true
		}
	}
	return false
}

func (t *memTx) UsernameExists(_ context.Context, username string) (bool, error) {
	return t.anyPerson(func(p *Person) bool { return strings.EqualFold(p.Username, username) }), nil
}

func (t *memTx) MobileNumberExists(_ context.Context, mobile string) (bool, error) {
	return t.anyPerson(func(p *Person) bool { return p.MobileNumber == mobile }), nil
}

func (t *memTx) EmailExists(_ context.Context, email string) (bool, error) {
	return t.anyPerson(func(p *Person) bool { return p.Email == email }), nil
}

func (t *memTx) MissingSpecializations(_ context.Context, ids []int64) ([]int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var missing []int64
	for _, id := range ids {
		if _, ok := t.store.specializations[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (t *memTx) step(name string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.inserts++
	if t.store.failAt == name {
		return apperr.Storage("insert "+name, errInjected)
	}
	return nil
}

func (t *memTx) InsertPerson(_ context.Context, p *Person) error {
	if err := t.step("person"); err != nil {
		return err
	}
	t.persons = append(t.persons, p)
	return nil
}

func (t *memTx) InsertContract(_ context.Context, c *EmployeeContract) error {
	if err := t.step("contract"); err != nil {
		return err
	}
	// Provisional id, replaced on commit.
	c.ID = -int64(len(t.contracts) + 1)
	t.contracts = append(t.contracts, c)
	return nil
}

func (t *memTx) InsertRole(_ context.Context, r *RoleRecord) error {
	if err := t.step("role"); err != nil {
		return err
	}
	cp := *r
	t.roles = append(t.roles, &cp)
	return nil
}
