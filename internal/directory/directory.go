// Package directory stores the user accounts that authenticate API callers
// and identify booking requesters.
package directory

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/workspace-planner/internal/codec"
	"github.com/example/workspace-planner/internal/persistence"
)

var (
	ErrNotFound           = errors.New("directory: user not found")
	ErrAlreadyExists      = errors.New("directory: user already exists")
	ErrInvalidCredentials = errors.New("directory: invalid credentials")
	ErrInvalidUser        = errors.New("directory: invalid user")
)

// maxWriteAttempts bounds retries when another process updates the
// directory between our read and write.
const maxWriteAttempts = 3

// Role grants permissions.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is an account without its credential.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user may change the floor plan.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SeedUser is an account definition with a clear-text password, hashed when
// written.
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     Role   `yaml:"role"`
	Password string `yaml:"password"`
}

//go:embed users.yaml
var defaultUsers []byte

// LoadSeed parses a YAML user list.
func LoadSeed(r io.Reader) ([]SeedUser, error) {
	var doc struct {
		Users []SeedUser `yaml:"users"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("directory: parse seed: %w", err)
	}
	for i, u := range doc.Users {
		if err := validate(u); err != nil {
			return nil, fmt.Errorf("directory: seed user %d: %w", i, err)
		}
	}
	return doc.Users, nil
}

// DefaultSeed returns the embedded accounts.
func DefaultSeed() []SeedUser {
	users, err := LoadSeed(bytes.NewReader(defaultUsers))
	if err != nil {
		panic(err)
	}
	return users
}

type account struct {
	User
	PasswordHash string `json:"password_hash"`
}

type document struct {
	Accounts []account `json:"accounts"`
}

// Option configures a Directory.
type Option func(*Directory)

// WithCodec selects the document encoding.
func WithCodec(c codec.Codec) Option {
	return func(d *Directory) {
		if c != nil {
			d.codec = c
		}
	}
}

// WithHashParams overrides the argon2id parameters for new hashes.
func WithHashParams(p HashParams) Option {
	return func(d *Directory) { d.params = p }
}

// WithSeed replaces the accounts written to an empty directory.
func WithSeed(users []SeedUser) Option {
	return func(d *Directory) { d.seed = users }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Directory is safe for concurrent use.
type Directory struct {
	repo    persistence.DocumentRepository
	swapper persistence.Swapper
	codec   codec.Codec
	params  HashParams
	seed    []SeedUser
	logger  *slog.Logger

	mu sync.Mutex
}

// New builds a directory over repo.
func New(repo persistence.DocumentRepository, opts ...Option) (*Directory, error) {
	if repo == nil {
		return nil, errors.New("directory: repository is required")
	}
	d := &Directory{
		repo:   repo,
		codec:  codec.JSON{},
		params: DefaultHashParams,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.seed == nil {
		d.seed = DefaultSeed()
	}
	if swapper, ok := repo.(persistence.Swapper); ok {
		d.swapper = swapper
	}
	return d, nil
}

// Authenticate matches login against an exact email or a case-insensitive
// display name and checks the password.
func (d *Directory) Authenticate(ctx context.Context, login, password string) (User, error) {
	d.mu.Lock()
	doc, _, err := d.load(ctx)
	d.mu.Unlock()
	if err != nil {
		return User{}, err
	}

	login = strings.TrimSpace(login)
	acct, ok := doc.find(func(a account) bool { return a.Email == login })
	if !ok {
		acct, ok = doc.find(func(a account) bool { return strings.EqualFold(a.Name, login) })
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := CheckPassword(acct.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("directory: check password for %s: %w", acct.ID, err)
	}
	return acct.User, nil
}

// Register creates an account. The email becomes the user id.
func (d *Directory) Register(ctx context.Context, input SeedUser) (User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = RoleEmployee
	}
	if err := validate(input); err != nil {
		return User{}, err
	}

	acct, err := d.newAccount(input)
	if err != nil {
		return User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		doc, version, err := d.load(ctx)
		if err != nil {
			return User{}, err
		}
		if _, exists := doc.find(func(a account) bool { return strings.EqualFold(a.Email, acct.Email) }); exists {
			return User{}, ErrAlreadyExists
		}
		doc.Accounts = append(doc.Accounts, acct)
		saved, err := d.write(ctx, doc, version+1)
		if err != nil {
			return User{}, err
		}
		if saved {
			d.logger.InfoContext(ctx, "user registered", "component", "directory", "user_id", acct.ID, "role", acct.Role)
			return acct.User, nil
		}
	}
	return User{}, fmt.Errorf("directory: register %s: concurrent updates exhausted %d attempts", acct.Email, maxWriteAttempts)
}

// Lookup returns the user with the given id.
func (d *Directory) Lookup(ctx context.Context, id string) (User, error) {
	d.mu.Lock()
	doc, _, err := d.load(ctx)
	d.mu.Unlock()
	if err != nil {
		return User{}, err
	}
	acct, ok := doc.find(func(a account) bool { return a.ID == id })
	if !ok {
		return User{}, ErrNotFound
	}
	return acct.User, nil
}

// List returns every user ordered by name.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	d.mu.Lock()
	doc, _, err := d.load(ctx)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(doc.Accounts))
	for _, a := range doc.Accounts {
		users = append(users, a.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (d *Directory) newAccount(input SeedUser) (account, error) {
	hash, err := HashPassword(input.Password, d.params)
	if err != nil {
		return account{}, fmt.Errorf("directory: hash password: %w", err)
	}
	return account{
		User:         User{ID: input.Email, Name: input.Name, Email: input.Email, Role: input.Role},
		PasswordHash: hash,
	}, nil
}

// load must be called with d.mu held.
func (d *Directory) load(ctx context.Context) (document, int64, error) {
	rec, err := d.repo.Load(ctx, persistence.DirectoryKey)
	if errors.Is(err, persistence.ErrNotFound) {
		return d.bootstrap(ctx)
	}
	if err != nil {
		return document{}, 0, fmt.Errorf("directory: load: %w", err)
	}
	var doc document
	if err := d.codec.Unmarshal(rec.Data, &doc); err != nil {
		return document{}, 0, fmt.Errorf("directory: decode: %w", err)
	}
	return doc, rec.Version, nil
}

func (d *Directory) bootstrap(ctx context.Context) (document, int64, error) {
	doc := document{Accounts: make([]account, 0, len(d.seed))}
	for _, u := range d.seed {
		acct, err := d.newAccount(u)
		if err != nil {
			return document{}, 0, err
		}
		doc.Accounts = append(doc.Accounts, acct)
	}
	saved, err := d.write(ctx, doc, 1)
	if err != nil {
		return document{}, 0, err
	}
	if !saved {
		// Another process seeded first.
		rec, err := d.repo.Load(ctx, persistence.DirectoryKey)
		if err != nil {
			return document{}, 0, fmt.Errorf("directory: load: %w", err)
		}
		var theirs document
		if err := d.codec.Unmarshal(rec.Data, &theirs); err != nil {
			return document{}, 0, fmt.Errorf("directory: decode: %w", err)
		}
		return theirs, rec.Version, nil
	}
	d.logger.InfoContext(ctx, "seeded empty directory", "component", "directory", "users", len(doc.Accounts))
	return doc, 1, nil
}

func (d *Directory) write(ctx context.Context, doc document, version int64) (bool, error) {
	data, err := d.codec.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("directory: encode: %w", err)
	}
	rec := persistence.Record{Key: persistence.DirectoryKey, Version: version, Data: data, UpdatedAt: time.Now().UTC()}

	if d.swapper != nil {
		_, saved, err := d.swapper.SaveIfNewer(ctx, rec)
		if err != nil {
			return false, fmt.Errorf("directory: save: %w", err)
		}
		return saved, nil
	}

	latest, err := d.repo.Load(ctx, rec.Key)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
	case err != nil:
		return false, fmt.Errorf("directory: save: %w", err)
	case latest.Version >= version:
		return false, nil
	}
	if err := d.repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("directory: save: %w", err)
	}
	return true, nil
}

func (doc document) find(match func(account) bool) (account, bool) {
	for _, a := range doc.Accounts {
		if match(a) {
			return a, true
		}
	}
	return account{}, false
}

func validate(u SeedUser) error {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	case strings.TrimSpace(u.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	case u.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	case !u.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUser, u.Role)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidUser)
	}
	return nil
}
