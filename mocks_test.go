package login_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-router"
	login "github.com/marlowhq/go-login"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// fakeCredentials stubs the credential store with function fields. The
// embedded interface panics on anything a test did not stub, which is the
// point: tests should declare every repository touch they expect.
type fakeCredentials struct {
	login.Credentials

	getByUsername   func(ctx context.Context, username string) (*login.Credential, error)
	writeSessionTx  func(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error
	readActiveToken func(ctx context.Context, userID uuid.UUID) (string, error)
	markDeleted     func(ctx context.Context, userID uuid.UUID) (bool, error)

	writeSessionCalls int
}

func (f *fakeCredentials) GetByUsername(ctx context.Context, username string) (*login.Credential, error) {
	return f.getByUsername(ctx, username)
}

func (f *fakeCredentials) WriteSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error {
	f.writeSessionCalls++
	return f.writeSessionTx(ctx, tx, userID, token, sessionID)
}

func (f *fakeCredentials) ReadActiveToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return f.readActiveToken(ctx, userID)
}

func (f *fakeCredentials) MarkDeleted(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f.markDeleted(ctx, userID)
}

type fakeAudits struct {
	login.Audits

	appendTx   func(ctx context.Context, tx bun.IDB, entry *login.AuditEntry) (*login.AuditEntry, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]*login.AuditEntry, error)

	appended []*login.AuditEntry
}

func (f *fakeAudits) AppendTx(ctx context.Context, tx bun.IDB, entry *login.AuditEntry) (*login.AuditEntry, error) {
	f.appended = append(f.appended, entry)
	if f.appendTx != nil {
		return f.appendTx(ctx, tx, entry)
	}
	return entry, nil
}

func (f *fakeAudits) ListByUser(ctx context.Context, userID uuid.UUID) ([]*login.AuditEntry, error) {
	return f.listByUser(ctx, userID)
}

type fakeVerifications struct {
	login.Verifications

	statusByUser func(ctx context.Context, userID uuid.UUID) (login.VerificationStatus, bool, error)
}

func (f *fakeVerifications) StatusByUser(ctx context.Context, userID uuid.UUID) (login.VerificationStatus, bool, error) {
	return f.statusByUser(ctx, userID)
}

// fakeRepo wires the fakes behind the RepositoryManager seam. RunInTx runs
// the unit of work directly against a zero-value transaction so the
// authenticator's transactional path is exercised without a database.
type fakeRepo struct {
	credentials   *fakeCredentials
	audits        *fakeAudits
	verifications *fakeVerifications

	runInTxErr error
}

func (f *fakeRepo) Validate() error { return nil }
func (f *fakeRepo) MustValidate()   {}

func (f *fakeRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if f.runInTxErr != nil {
		return f.runInTxErr
	}
	return fn(ctx, bun.Tx{})
}

func (f *fakeRepo) Credentials() login.Credentials     { return f.credentials }
func (f *fakeRepo) Audits() login.Audits               { return f.audits }
func (f *fakeRepo) Verifications() login.Verifications { return f.verifications }

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		credentials:   &fakeCredentials{},
		audits:        &fakeAudits{},
		verifications: &fakeVerifications{},
	}
}

// MockAuthenticator implements login.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, input login.LoginInput) (*login.SessionDescriptor, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*login.SessionDescriptor), args.Error(1)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*login.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*login.Principal), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthenticator) AuditTrail(ctx context.Context, userID uuid.UUID) ([]*login.AuditEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*login.AuditEntry), args.Error(1)
}

// MockContext mocks the router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
