package auth_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldserve/reimbursement/internal/auth"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockAuthRepository struct {
	byEmail map[string]*userDatamodel.User
	byID    map[int64]*userDatamodel.User
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		byEmail: make(map[string]*userDatamodel.User),
		byID:    make(map[int64]*userDatamodel.User),
	}
}

func (m *mockAuthRepository) add(u *userDatamodel.User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *mockAuthRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

func (m *mockAuthRepository) GetByID(id int64) (*userDatamodel.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return u, nil
}

var _ = Describe("AuthService", func() {
	var (
		service *auth.Service
		repo    *mockAuthRepository
		tokens  *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		tokens = auth.NewJWTTokenGenerator("test-secret-at-least-32-characters-long", time.Hour)
		service = auth.NewService(repo, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())

		repo.add(&userDatamodel.User{
			ID:           10,
			Name:         "Budi",
			Email:        "budi@mail.com",
			PasswordHash: string(hash),
			Role:         userDatamodel.RoleTechnician,
			IsActive:     true,
		})
	})

	Describe("Authenticate", func() {
		It("should issue a token for valid credentials", func() {
			resp, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "correct-password"})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.AccessToken).ToNot(BeEmpty())
			Expect(resp.User.ID).To(Equal(int64(10)))
			Expect(resp.User.Role).To(Equal(userDatamodel.RoleTechnician))
			Expect(resp.ExpiresAt).To(BeTemporally(">", time.Now()))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@mail.com", Password: "whatever"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject an inactive user", func() {
			repo.byEmail["budi@mail.com"].IsActive = false
			_, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "correct-password"})
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})
	})

	Describe("ResolveToken", func() {
		It("should round-trip a generated token back to the user", func() {
			resp, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "correct-password"})
			Expect(err).ToNot(HaveOccurred())

			user, err := service.ResolveToken(resp.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(user.ID).To(Equal(int64(10)))
			Expect(user.Email).To(Equal("budi@mail.com"))
		})

		It("should reject garbage tokens", func() {
			_, err := service.ResolveToken("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject a token once the user is deactivated", func() {
			resp, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "correct-password"})
			Expect(err).ToNot(HaveOccurred())

			repo.byID[10].IsActive = false

			_, err = service.ResolveToken(resp.AccessToken)
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("should reject an expired token", func() {
			shortLived := auth.NewJWTTokenGenerator("test-secret-at-least-32-characters-long", -time.Minute)
			expired := auth.NewService(repo, shortLived, slog.New(slog.NewTextHandler(io.Discard, nil)))

			resp, err := expired.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "correct-password"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ResolveToken(resp.AccessToken)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})
	})
})
