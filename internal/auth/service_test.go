package auth

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore-api/internal/docstore"
	"docstore-api/internal/logging"
	"docstore-api/internal/user"
)

type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[string]Ticket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[string]Ticket)}
}

func (f *fakeTicketStore) Save(ctx context.Context, username string, ticket Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[username] = ticket
	return nil
}

func (f *fakeTicketStore) Get(ctx context.Context, username string) (Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[username]
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeTicketStore) Delete(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tickets, username)
	return nil
}

// backdate rewrites a stored ticket's issuance time to simulate expiry.
func (f *fakeTicketStore) backdate(username string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket := f.tickets[username]
	ticket.CreatedAt = ticket.CreatedAt.Add(-d)
	f.tickets[username] = ticket
}

type delivery struct {
	email string
	code  string
}

type fakeSender struct {
	ch chan delivery
}

func newFakeSender() *fakeSender {
	return &fakeSender{ch: make(chan delivery, 8)}
}

func (f *fakeSender) DeliverCode(ctx context.Context, toEmail, code string) error {
	f.ch <- delivery{email: toEmail, code: code}
	return nil
}

type serviceFixture struct {
	service *Service
	store   *docstore.Memory
	tickets *fakeTicketStore
	sender  *fakeSender
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	store := docstore.NewMemory()
	tickets := newFakeTicketStore()
	sender := newFakeSender()
	service := NewService(user.NewRepository(store), tickets, sender, logging.NewLogger(true))

	return &serviceFixture{service: service, store: store, tickets: tickets, sender: sender}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:            "Alice",
		Phone:           "555-0100",
		Age:             json.Number("30"),
		Gender:          "female",
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret",
		ConfirmPassword: "secret",
	}
}

func (f *serviceFixture) register(t *testing.T) {
	t.Helper()
	require.NoError(t, f.service.Register(context.Background(), validRegisterInput()))
}

func (f *serviceFixture) userCount(t *testing.T) int {
	t.Helper()
	docs, err := f.store.GetAll(context.Background(), user.Collection)
	require.NoError(t, err)
	return len(docs)
}

func TestRegister_MissingField(t *testing.T) {
	f := newServiceFixture(t)

	in := validRegisterInput()
	in.Phone = ""

	err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Zero(t, f.userCount(t), "no document is created")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := newServiceFixture(t)

	in := validRegisterInput()
	in.ConfirmPassword = "different"

	err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, f.userCount(t))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	in := validRegisterInput()
	in.Email = "other@example.com"

	err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, 1, f.userCount(t), "exactly one account document exists")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	in := validRegisterInput()
	in.Username = "alice2"

	err := f.service.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailRegistered)
	assert.Equal(t, 1, f.userCount(t))
}

func TestRegister_StoresConfirmPasswordNowhere(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	docs, err := f.store.GetAll(context.Background(), user.Collection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0].Fields, "confirmPassword")
}

func TestLogin_Success(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	account, err := f.service.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)

	data, err := json.Marshal(account)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password", "serialized account carries no password key")
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	account, err := f.service.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, account)
}

func TestLogin_MissingFields(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestForgotPassword_IssuesTicket(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	otp, err := f.service.ForgotPassword(context.Background(), "alice@example.com", "alice")
	require.NoError(t, err)
	assert.Regexp(t, sixDigits, otp)

	ticket, err := f.tickets.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, otp, ticket.OTP)
	assert.Equal(t, "alice@example.com", ticket.Email)
	assert.WithinDuration(t, time.Now(), ticket.CreatedAt, time.Minute)

	select {
	case d := <-f.sender.ch:
		assert.Equal(t, "alice@example.com", d.email)
		assert.Equal(t, otp, d.code)
	case <-time.After(time.Second):
		t.Fatal("code was never delivered")
	}
}

func TestForgotPassword_UnknownPair(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	_, err := f.service.ForgotPassword(context.Background(), "other@example.com", "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.tickets.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrTicketNotFound, "no ticket is issued")
}

func TestForgotPassword_ReissueOverwrites(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)
	ctx := context.Background()

	first, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	second, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	ticket, err := f.tickets.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, second, ticket.OTP, "reissue overwrites the prior ticket")
	if first != second {
		assert.NotEqual(t, first, ticket.OTP)
	}
}

func resetInput(otp string) ResetInput {
	return ResetInput{
		Email:           "alice@example.com",
		Username:        "alice",
		OTP:             otp,
		NewPassword:     "newsecret",
		ConfirmPassword: "newsecret",
	}
}

func TestResetPassword_Success(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)
	ctx := context.Background()

	otp, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPassword(ctx, resetInput(otp)))

	_, err = f.service.Login(ctx, "alice", "newsecret")
	assert.NoError(t, err, "password was updated")

	_, err = f.tickets.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrTicketNotFound, "ticket is consumed")
}

func TestResetPassword_Expired(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)
	ctx := context.Background()

	otp, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	f.tickets.backdate("alice", 6*time.Minute)

	err = f.service.ResetPassword(ctx, resetInput(otp))
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = f.service.Login(ctx, "alice", "secret")
	assert.NoError(t, err, "password is unchanged")

	_, err = f.tickets.Get(ctx, "alice")
	assert.NoError(t, err, "an expired ticket is only deleted on success")
}

func TestResetPassword_WrongCode(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)
	ctx := context.Background()

	otp, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	err = f.service.ResetPassword(ctx, resetInput(wrong))
	// Wrong code and expired ticket are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = f.service.Login(ctx, "alice", "secret")
	assert.NoError(t, err)
}

func TestResetPassword_WrongEmail(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)
	ctx := context.Background()

	otp, err := f.service.ForgotPassword(ctx, "alice@example.com", "alice")
	require.NoError(t, err)

	in := resetInput(otp)
	in.Email = "other@example.com"

	err = f.service.ResetPassword(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPassword_NoTicket(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t)

	err := f.service.ResetPassword(context.Background(), resetInput("123456"))
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPassword_Validation(t *testing.T) {
	f := newServiceFixture(t)

	in := resetInput("123456")
	in.NewPassword = ""
	assert.ErrorIs(t, f.service.ResetPassword(context.Background(), in), ErrMissingFields)

	in = resetInput("123456")
	in.ConfirmPassword = "different"
	assert.ErrorIs(t, f.service.ResetPassword(context.Background(), in), ErrPasswordMismatch)
}
