// Package fakeserver is an in-process stand-in for the campus backend used by
// tests. It implements the auth and current-user routes with the same
// status codes and bodies as the real API, signs HS256 JWTs and stores
// bcrypt password hashes. Hooks let tests fail, hold or count calls per route.
package fakeserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/tokens"
)

var signingKey = []byte("fakeserver-secret")

type user struct {
	identity     models.Identity
	passwordHash []byte
	verifyToken  string
}

type failure struct {
	status int
	detail string
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	tokenSeq int64
	users    map[string]*user // by email
	byID     map[int64]*user
	revoked  map[string]bool
	calls    map[string]int
	lastAuth map[string]string
	failures map[string]failure
	holds    map[string]chan struct{}
	arrived  map[string]chan struct{}
}

// New starts a fake backend. Call Close when done.
func New() *Server {
	s := &Server{
		users:    map[string]*user{},
		byID:     map[int64]*user{},
		revoked:  map[string]bool{},
		calls:    map[string]int{},
		lastAuth: map[string]string{},
		failures: map[string]failure{},
		holds:    map[string]chan struct{}{},
		arrived:  map[string]chan struct{}{},
	}

	r := mux.NewRouter()
	r.Use(s.hooks)
	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register-step1", s.registerStep1).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register-step2", s.registerStep2).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify-email", s.verifyEmail).Methods(http.MethodPost)
	r.HandleFunc("/api/users/me", s.getMe).Methods(http.MethodGet)
	r.HandleFunc("/api/users/me", s.putMe).Methods(http.MethodPut)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers a fully onboarded user and returns its id.
func (s *Server) AddUser(email, password string, identity models.Identity) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	identity.ID = s.nextID
	identity.Email = email
	identity.ProfileCompleted = true
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	u := &user{identity: identity, passwordHash: hash, verifyToken: fmt.Sprintf("verify-%d", s.nextID)}
	s.users[email] = u
	s.byID[u.identity.ID] = u
	return u.identity.ID
}

// IssueAccessToken mints a valid access credential for userID.
func (s *Server) IssueAccessToken(userID int64) string {
	return s.issue(userID, "", time.Hour)
}

// IssueExpiredToken mints an access credential whose exp is in the past.
func (s *Server) IssueExpiredToken(userID int64) string {
	return s.issue(userID, "", -time.Minute)
}

// Revoke makes the server reject token with 401 from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = true
	s.mu.Unlock()
}

// VerificationToken returns the email verification token of a user.
func (s *Server) VerificationToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		return u.verifyToken
	}
	return ""
}

// Identity returns the server-side identity stored for email.
func (s *Server) Identity(email string) (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return models.Identity{}, false
	}
	return *u.identity.Clone(), true
}

// Fail makes every request to "METHOD /path" answer status with detail until Clear.
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	s.failures[route] = failure{status: status, detail: detail}
	s.mu.Unlock()
}

// Clear removes a failure installed with Fail.
func (s *Server) Clear(route string) {
	s.mu.Lock()
	delete(s.failures, route)
	s.mu.Unlock()
}

// Hold blocks requests to route until the returned release func is called.
// The arrived channel is closed when the first held request comes in.
func (s *Server) Hold(route string) (arrived <-chan struct{}, release func()) {
	gate := make(chan struct{})
	in := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = gate
	s.arrived[route] = in
	s.mu.Unlock()

	var once sync.Once
	return in, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many requests hit route ("METHOD /path").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastAuthorization returns the Authorization header of the last request to route.
func (s *Server) LastAuthorization(route string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth[route]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *Server) hooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.calls[route]++
		s.lastAuth[route] = r.Header.Get("Authorization")
		f, failing := s.failures[route]
		gate := s.holds[route]
		in := s.arrived[route]
		delete(s.arrived, route)
		s.mu.Unlock()

		if in != nil {
			close(in)
		}
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) issue(userID int64, step string, ttl time.Duration) string {
	s.mu.Lock()
	s.tokenSeq++
	seq := s.tokenSeq
	s.mu.Unlock()

	claims := tokens.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        strconv.FormatInt(seq, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Step: step,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// authenticate returns the user owning the bearer token if it is valid and
// scoped to step ("" for access credentials).
func (s *Server) authenticate(r *http.Request, step string) (*user, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, false
	}

	var claims tokens.Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Step != step {
		return nil, false
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[raw] {
		return nil, false
	}
	u, ok := s.byID[id]
	return u, ok
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: s.IssueAccessToken(u.identity.ID), TokenType: "bearer"})
}

func (s *Server) registerStep1(w http.ResponseWriter, r *http.Request) {
	var req models.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if !strings.HasSuffix(req.Email, ".edu") {
		writeDetail(w, http.StatusBadRequest, "Only university email addresses (.edu domain) are allowed")
		return
	}
	if len(req.Password) < 8 {
		writeDetail(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	s.mu.Lock()
	_, exists := s.users[req.Email]
	s.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	id := s.AddUser(req.Email, req.Password, models.Identity{Interests: []string{}, Photos: []string{}})
	s.mu.Lock()
	s.byID[id].identity.ProfileCompleted = false
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.ProvisionalGrant{
		UserID:    id,
		TempToken: s.issue(id, tokens.RegistrationStep, time.Hour),
		Message:   "Step 1 completed. Please complete your profile.",
	})
}

func (s *Server) registerStep2(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r, tokens.RegistrationStep)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired registration token. Please try registering again.")
		return
	}
	var f models.ProfileFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	id := &u.identity
	id.Name, id.School, id.Year = f.Name, f.School, f.Year
	id.Interests = nonNil(f.Interests)
	id.Photos = nonNil(f.Photos)
	id.HeightCM, id.WeightKG = f.HeightCM, f.WeightKG
	id.Nationality, id.Ethnicity = f.Nationality, f.Ethnicity
	id.ProfileCompleted = true
	summary := &models.RegisteredUser{ID: id.ID, Email: id.Email, Name: id.Name, ProfileCompleted: true}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: s.IssueAccessToken(summary.ID),
		TokenType:   "bearer",
		User:        summary,
	})
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.verifyToken != "" && u.verifyToken == req.Token {
			if u.identity.IsVerified {
				writeDetail(w, http.StatusBadRequest, "Email already verified")
				return
			}
			u.identity.IsVerified = true
			writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Email verified successfully"})
			return
		}
	}
	writeDetail(w, http.StatusBadRequest, "Invalid verification token")
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r, "")
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	s.mu.Lock()
	identity := u.identity.Clone()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) putMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(r, "")
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	id := &u.identity
	if upd.Name != nil {
		id.Name = *upd.Name
	}
	if upd.School != nil {
		id.School = *upd.School
	}
	if upd.Year != nil {
		id.Year = *upd.Year
	}
	if upd.Interests != nil {
		id.Interests = upd.Interests
	}
	if upd.AvatarURL != nil {
		id.AvatarURL = upd.AvatarURL
	}
	if upd.HeightCM != nil {
		id.HeightCM = upd.HeightCM
	}
	if upd.WeightKG != nil {
		id.WeightKG = upd.WeightKG
	}
	if upd.Nationality != nil {
		id.Nationality = upd.Nationality
	}
	if upd.Ethnicity != nil {
		id.Ethnicity = upd.Ethnicity
	}
	if upd.Photos != nil {
		id.Photos = upd.Photos
	}
	identity := id.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, identity)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
