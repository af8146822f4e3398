package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/medocupa/access-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// ErrIdentityNotFound is returned by a Directory that has no such identity.
var ErrIdentityNotFound = errors.New("identity not found")

// Directory looks identities up for sign-in, refresh and administration.
// repository.IdentityRepository and DemoDirectory implement it.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*model.Identity, error)
	GetByID(ctx context.Context, id string) (*model.Identity, error)
	List(ctx context.Context, tenantID string) ([]model.Identity, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrIdentityNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// demoNamespace derives stable demo identity ids from their email.
var demoNamespace = uuid.MustParse("6f1c2a8e-4b7d-4d3e-9a51-2c0e8f7b3d10")

// DemoIdentities is the built-in demo directory.
var DemoIdentities = []model.Identity{
	{Email: "superadmin@medocupa.demo", DisplayName: "Soporte MedOcupa", Role: model.RoleSuperAdmin, TenantID: "medocupa", SiteID: "hq", Status: model.StatusActive},
	{Email: "admin@acme.demo", DisplayName: "Laura Méndez", Role: model.RoleEnterpriseAdmin, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "sede@acme.demo", DisplayName: "Jorge Ramírez", Role: model.RoleSiteAdmin, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "medico@acme.demo", DisplayName: "Dra. Ana Torres", Role: model.RolePhysicianGeneralist, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "especialista@acme.demo", DisplayName: "Dr. Luis Herrera", Role: model.RolePhysicianSpecialist, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "enfermeria@acme.demo", DisplayName: "Carmen Ruiz", Role: model.RoleNurse, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "laboratorio@acme.demo", DisplayName: "Pedro Castillo", Role: model.RoleLabTechnician, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "recepcion@acme.demo", DisplayName: "Sofía Vargas", Role: model.RoleReceptionist, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "facturacion@acme.demo", DisplayName: "Miguel Ortega", Role: model.RoleBillingClerk, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "paciente@acme.demo", DisplayName: "Roberto Díaz", Role: model.RolePatient, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusActive},
	{Email: "suspendido@acme.demo", DisplayName: "Cuenta Suspendida", Role: model.RoleReceptionist, TenantID: "acme", SiteID: "planta-norte", Status: model.StatusSuspended},
}

// DemoIdentityID returns the id a demo identity with email is assigned.
func DemoIdentityID(email string) string {
	return uuid.NewSHA1(demoNamespace, []byte(strings.ToLower(email))).String()
}

// DemoDirectory is an in-memory Directory seeded from DemoIdentities. All
// demo identities share one password.
type DemoDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]*model.Identity
	byID    map[string]*model.Identity
}

// NewDemoDirectory hashes password once at cost and builds the directory.
func NewDemoDirectory(password string, cost int) (*DemoDirectory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	d := &DemoDirectory{
		byEmail: make(map[string]*model.Identity, len(DemoIdentities)),
		byID:    make(map[string]*model.Identity, len(DemoIdentities)),
	}
	for _, seed := range DemoIdentities {
		identity := seed
		identity.ID = DemoIdentityID(seed.Email)
		identity.PasswordHash = string(hash)
		d.put(&identity)
	}
	return d, nil
}

func (d *DemoDirectory) put(identity *model.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEmail[strings.ToLower(identity.Email)] = identity
	d.byID[identity.ID] = identity
}

// GetByEmail returns a copy of the identity registered under email.
func (d *DemoDirectory) GetByEmail(_ context.Context, email string) (*model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	identity, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	cp := *identity
	return &cp, nil
}

// GetByID returns a copy of the identity with id.
func (d *DemoDirectory) GetByID(_ context.Context, id string) (*model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	identity, ok := d.byID[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	cp := *identity
	return &cp, nil
}

// Update replaces a stored identity, matched by id. Used to simulate role or
// site changes in demo mode.
func (d *DemoDirectory) Update(identity model.Identity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.byID[identity.ID]
	if !ok {
		return ErrIdentityNotFound
	}
	if identity.PasswordHash == "" {
		identity.PasswordHash = existing.PasswordHash
	}
	delete(d.byEmail, strings.ToLower(existing.Email))
	d.byEmail[strings.ToLower(identity.Email)] = &identity
	d.byID[identity.ID] = &identity
	return nil
}

// List returns the demo identities of tenantID sorted by email, without
// password hashes. An empty tenantID lists all of them.
func (d *DemoDirectory) List(_ context.Context, tenantID string) ([]model.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Identity, 0, len(d.byID))
	for _, identity := range d.byID {
		if tenantID != "" && identity.TenantID != tenantID {
			continue
		}
		cp := *identity
		cp.PasswordHash = ""
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
