package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/asset-inventory/internal/application"
)

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues a session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		expires := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
		service := &authServiceStub{
			loginFunc: func(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
				if params.Username != "sato" {
					t.Fatalf("expected normalized username, got %q", params.Username)
				}
				return application.LoginResult{
					User:      application.User{ID: "user-1", Username: "sato", Role: application.RoleViewer},
					Token:     "issued-token",
					ExpiresAt: expires,
				}, nil
			},
		}

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"username":" Sato ","password":"secret"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "issued-token" {
			t.Fatalf("expected token header, got %q", got)
		}

		foundCookie := false
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value == "issued-token" {
				foundCookie = true
			}
		}
		if !foundCookie {
			t.Fatal("expected session_token cookie to be set")
		}

		var body loginResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode login response: %v", err)
		}
		if body.Token != "issued-token" || body.User.ID != "user-1" {
			t.Fatalf("unexpected login response: %+v", body)
		}
	})

	t.Run("login surfaces the two-factor challenge", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{
			loginFunc: func(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
				return application.LoginResult{}, application.ErrTwoFactorRequired
			},
		}

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"username":"sato","password":"secret"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if body.ErrorCode != "AUTH_TWO_FACTOR_REQUIRED" {
			t.Fatalf("expected AUTH_TWO_FACTOR_REQUIRED, got %q", body.ErrorCode)
		}
	})

	t.Run("login rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, nil)})
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{not json"))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})

	t.Run("logout revokes the current session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		var revoked string
		service := &authServiceStub{
			logoutFunc: func(ctx context.Context, token string) error {
				revoked = token
				return nil
			},
		}

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})
		req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
		req.Header.Set("Authorization", "Bearer active-token")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if revoked != "active-token" {
			t.Fatalf("expected token to be revoked, got %q", revoked)
		}

		clearedCookie := false
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.MaxAge < 0 {
				clearedCookie = true
			}
		}
		if !clearedCookie {
			t.Fatal("expected session cookie to be cleared")
		}
	})

	t.Run("logout without a token returns 401", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, nil)})
		req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}
	})

	t.Run("sessions endpoint rejects other methods", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(&authServiceStub{}, nil)})
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", recorder.Code)
		}
		if got := recorder.Header().Get("Allow"); got != http.MethodPost {
			t.Fatalf("expected Allow header %q, got %q", http.MethodPost, got)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the stored user", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			createFunc: func(ctx context.Context, params application.CreateUserParams) (application.User, error) {
				if params.Input.Username != "tanaka" {
					t.Fatalf("expected trimmed username, got %q", params.Input.Username)
				}
				return application.User{ID: "user-2", Username: "tanaka", Role: application.RoleEditor}, nil
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "admin-1", Role: application.RoleAdmin})
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":" tanaka ","email":"tanaka@example.com","display_name":"Tanaka","password":"password1","role":"editor"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var body userResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode user response: %v", err)
		}
		if body.User.ID != "user-2" {
			t.Fatalf("unexpected user response: %+v", body)
		}
	})

	t.Run("authorization errors map to 403", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			createFunc: func(ctx context.Context, params application.CreateUserParams) (application.User, error) {
				return application.User{}, application.ErrUnauthorized
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "viewer-1", Role: application.RoleViewer})
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"x","email":"x@example.com","password":"password1","role":"viewer"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", recorder.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if body.ErrorCode != "AUTH_FORBIDDEN" {
			t.Fatalf("expected AUTH_FORBIDDEN, got %q", body.ErrorCode)
		}
	})

	t.Run("validation errors map to 422 with field details", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			createFunc: func(ctx context.Context, params application.CreateUserParams) (application.User, error) {
				return application.User{}, &application.ValidationError{FieldErrors: map[string]string{
					"email": "email is invalid",
				}}
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "admin-1", Role: application.RoleAdmin})
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"x","email":"broken"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", recorder.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if body.Errors["email"] != "email is invalid" {
			t.Fatalf("expected field error for email, got %+v", body.Errors)
		}
	})

	t.Run("duplicate usernames map to 409", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			createFunc: func(ctx context.Context, params application.CreateUserParams) (application.User, error) {
				return application.User{}, application.ErrAlreadyExists
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "admin-1", Role: application.RoleAdmin})
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"taken","email":"taken@example.com","password":"password1","role":"viewer"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", recorder.Code)
		}
	})

	t.Run("get resolves the literal me to the principal", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			getFunc: func(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
				if userID != "viewer-1" {
					t.Fatalf("expected principal id, got %q", userID)
				}
				return application.User{ID: userID, Username: "viewer"}, nil
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "viewer-1", Role: application.RoleViewer})
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
	})

	t.Run("two-factor enrollment returns provisioning data", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{
			enrollFunc: func(ctx context.Context, principal application.Principal) (application.TwoFactorEnrollment, error) {
				return application.TwoFactorEnrollment{Secret: "SECRET", URL: "otpauth://totp/example"}, nil
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "viewer-1", Role: application.RoleViewer})
		req := httptest.NewRequest(http.MethodPost, "/users/me/two-factor", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", recorder.Code)
		}
		var body twoFactorEnrollResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode enrollment response: %v", err)
		}
		if body.Secret != "SECRET" || body.URL == "" {
			t.Fatalf("unexpected enrollment response: %+v", body)
		}
	})

	t.Run("two-factor confirmation passes the code through", func(t *testing.T) {
		t.Parallel()

		var confirmed string
		service := &userServiceStub{
			confirmFunc: func(ctx context.Context, principal application.Principal, code string) error {
				confirmed = code
				return nil
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "viewer-1", Role: application.RoleViewer})
		req := httptest.NewRequest(http.MethodPost, "/users/me/two-factor/confirm", strings.NewReader(`{"code":" 123456 "}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if confirmed != "123456" {
			t.Fatalf("expected trimmed code, got %q", confirmed)
		}
	})

	t.Run("two-factor disable targets the path user", func(t *testing.T) {
		t.Parallel()

		var disabled string
		service := &userServiceStub{
			disableFunc: func(ctx context.Context, principal application.Principal, userID string) error {
				disabled = userID
				return nil
			},
		}

		router := newUserRouter(service, application.Principal{UserID: "admin-1", Role: application.RoleAdmin})
		req := httptest.NewRequest(http.MethodDelete, "/users/user-9/two-factor", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if disabled != "user-9" {
			t.Fatalf("expected user-9, got %q", disabled)
		}
	})
}

func TestEquipmentHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create parses nullable date fields", func(t *testing.T) {
		t.Parallel()

		service := &equipmentServiceStub{
			createFunc: func(ctx context.Context, params application.CreateEquipmentParams) (application.Equipment, error) {
				if params.Input.PurchaseDate == nil || params.Input.PurchaseDate.Format(dateLayout) != "2025-04-01" {
					t.Fatalf("expected parsed purchase date, got %v", params.Input.PurchaseDate)
				}
				return application.Equipment{ID: "eq-1", AssetTag: params.Input.AssetTag, Status: "in_stock"}, nil
			},
		}

		router := newEquipmentRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodPost, "/equipment", strings.NewReader(`{"asset_tag":"IT-0001","name":"Laptop","category":"laptop","purchase_date":"2025-04-01"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("create rejects malformed dates", func(t *testing.T) {
		t.Parallel()

		router := newEquipmentRouter(&equipmentServiceStub{}, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodPost, "/equipment", strings.NewReader(`{"asset_tag":"IT-0001","name":"Laptop","purchase_date":"01/04/2025"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", recorder.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if _, ok := body.Errors["purchase_date"]; !ok {
			t.Fatalf("expected field error for purchase_date, got %+v", body.Errors)
		}
	})

	t.Run("list forwards query filters", func(t *testing.T) {
		t.Parallel()

		service := &equipmentServiceStub{
			listFunc: func(ctx context.Context, params application.ListEquipmentParams) ([]application.Equipment, error) {
				if params.Filter.Status != "assigned" || params.Filter.Category != "laptop" {
					t.Fatalf("unexpected filter: %+v", params.Filter)
				}
				return []application.Equipment{{ID: "eq-1"}}, nil
			},
		}

		router := newEquipmentRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/equipment?status=assigned&category=laptop", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
	})

	t.Run("missing assets map to 404", func(t *testing.T) {
		t.Parallel()

		service := &equipmentServiceStub{
			getFunc: func(ctx context.Context, principal application.Principal, equipmentID string) (application.Equipment, error) {
				return application.Equipment{}, application.ErrNotFound
			},
		}

		router := newEquipmentRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/equipment/missing", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", recorder.Code)
		}
	})

	t.Run("history is served under the asset path", func(t *testing.T) {
		t.Parallel()

		service := &equipmentServiceStub{
			historyFunc: func(ctx context.Context, principal application.Principal, equipmentID string) ([]application.HistoryEntry, error) {
				if equipmentID != "eq-1" {
					t.Fatalf("expected eq-1, got %q", equipmentID)
				}
				return []application.HistoryEntry{{ID: 1, EquipmentID: equipmentID, ChangeType: "create"}}, nil
			},
		}

		router := newEquipmentRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/equipment/eq-1/history", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body historyResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode history response: %v", err)
		}
		if len(body.History) != 1 || body.History[0].ChangeType != "create" {
			t.Fatalf("unexpected history response: %+v", body)
		}
	})

	t.Run("inventory check submits all items", func(t *testing.T) {
		t.Parallel()

		service := &equipmentServiceStub{
			inventoryFunc: func(ctx context.Context, params application.InventoryCheckParams) error {
				if len(params.Items) != 2 {
					t.Fatalf("expected 2 items, got %d", len(params.Items))
				}
				if params.Items[1].Status != "missing" {
					t.Fatalf("unexpected item status: %+v", params.Items[1])
				}
				return nil
			},
		}

		router := newEquipmentRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodPost, "/equipment/inventory-check", strings.NewReader(`{"items":[{"equipment_id":"eq-1","status":"in_stock"},{"equipment_id":"eq-2","status":"missing","notes":"not on desk"}]}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})
}

func TestLicenseHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the stored license", func(t *testing.T) {
		t.Parallel()

		service := &licenseServiceStub{
			createFunc: func(ctx context.Context, params application.CreateLicenseParams) (application.License, error) {
				if params.Input.Seats != 25 {
					t.Fatalf("expected 25 seats, got %d", params.Input.Seats)
				}
				return application.License{ID: "lic-1", Product: params.Input.Product, Seats: params.Input.Seats}, nil
			},
		}

		router := newLicenseRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodPost, "/licenses", strings.NewReader(`{"product":"Office Suite","vendor":"Example Corp","seats":25,"expires_on":"2027-01-31"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var body licenseResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode license response: %v", err)
		}
		if body.License.ID != "lic-1" {
			t.Fatalf("unexpected license response: %+v", body)
		}
	})

	t.Run("delete routes the path id", func(t *testing.T) {
		t.Parallel()

		var deleted string
		service := &licenseServiceStub{
			deleteFunc: func(ctx context.Context, principal application.Principal, licenseID string) error {
				deleted = licenseID
				return nil
			},
		}

		router := newLicenseRouter(service, editorTestPrincipal())
		req := httptest.NewRequest(http.MethodDelete, "/licenses/lic-7", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if deleted != "lic-7" {
			t.Fatalf("expected lic-7, got %q", deleted)
		}
	})
}

func TestAuditHandler(t *testing.T) {
	t.Parallel()

	t.Run("list forwards the limit parameter", func(t *testing.T) {
		t.Parallel()

		service := &auditServiceStub{
			listFunc: func(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error) {
				if limit != 50 {
					t.Fatalf("expected limit 50, got %d", limit)
				}
				return []application.AuditEntry{{ID: 1, Action: "user.create"}}, nil
			},
		}

		router := newAuditRouter(service, adminTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/audit-log?limit=50", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body listAuditResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode audit response: %v", err)
		}
		if len(body.Entries) != 1 || body.Entries[0].Action != "user.create" {
			t.Fatalf("unexpected audit response: %+v", body)
		}
	})

	t.Run("rejects non numeric limits", func(t *testing.T) {
		t.Parallel()

		router := newAuditRouter(&auditServiceStub{}, adminTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/audit-log?limit=abc", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})
}

func TestSettingsHandlers(t *testing.T) {
	t.Parallel()

	t.Run("list returns a flat key value map", func(t *testing.T) {
		t.Parallel()

		service := &settingsServiceStub{
			listFunc: func(ctx context.Context, principal application.Principal) ([]application.Setting, error) {
				return []application.Setting{
					{Key: "companyName", Value: "Example Co"},
					{Key: "isSsoEnabled", Value: "false"},
				}, nil
			},
		}

		router := newSettingsRouter(service, adminTestPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/settings", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var body settingsResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode settings response: %v", err)
		}
		if body.Settings["companyName"] != "Example Co" {
			t.Fatalf("unexpected settings response: %+v", body)
		}
	})

	t.Run("update submits all entries", func(t *testing.T) {
		t.Parallel()

		var received []application.Setting
		service := &settingsServiceStub{
			updateFunc: func(ctx context.Context, principal application.Principal, settings []application.Setting) error {
				received = settings
				return nil
			},
		}

		router := newSettingsRouter(service, adminTestPrincipal())
		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"settings":{"companyName":"Renamed Co"}}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if len(received) != 1 || received[0].Key != "companyName" || received[0].Value != "Renamed Co" {
			t.Fatalf("unexpected settings payload: %+v", received)
		}
	})
}

func adminTestPrincipal() application.Principal {
	return application.Principal{UserID: "admin-1", Role: application.RoleAdmin}
}

func editorTestPrincipal() application.Principal {
	return application.Principal{UserID: "editor-1", Role: application.RoleEditor}
}

// principalInjector stands in for the session middleware in handler tests.
func principalInjector(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func newUserRouter(service userService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Users:      NewUserHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalInjector(principal)},
	})
}

func newEquipmentRouter(service equipmentService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Equipment:  NewEquipmentHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalInjector(principal)},
	})
}

func newLicenseRouter(service licenseService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Licenses:   NewLicenseHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalInjector(principal)},
	})
}

func newAuditRouter(service auditService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Audit:      NewAuditHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalInjector(principal)},
	})
}

func newSettingsRouter(service settingsService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Settings:   NewSettingsHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalInjector(principal)},
	})
}

type authServiceStub struct {
	loginFunc  func(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	logoutFunc func(ctx context.Context, token string) error
}

func (s *authServiceStub) Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
	if s.loginFunc == nil {
		return application.LoginResult{}, nil
	}
	return s.loginFunc(ctx, params)
}

func (s *authServiceStub) Logout(ctx context.Context, token string) error {
	if s.logoutFunc == nil {
		return nil
	}
	return s.logoutFunc(ctx, token)
}

type userServiceStub struct {
	createFunc  func(ctx context.Context, params application.CreateUserParams) (application.User, error)
	updateFunc  func(ctx context.Context, params application.UpdateUserParams) (application.User, error)
	deleteFunc  func(ctx context.Context, principal application.Principal, userID string) error
	getFunc     func(ctx context.Context, principal application.Principal, userID string) (application.User, error)
	listFunc    func(ctx context.Context, principal application.Principal) ([]application.User, error)
	enrollFunc  func(ctx context.Context, principal application.Principal) (application.TwoFactorEnrollment, error)
	confirmFunc func(ctx context.Context, principal application.Principal, code string) error
	disableFunc func(ctx context.Context, principal application.Principal, userID string) error
}

func (s *userServiceStub) CreateUser(ctx context.Context, params application.CreateUserParams) (application.User, error) {
	if s.createFunc == nil {
		return application.User{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *userServiceStub) UpdateUser(ctx context.Context, params application.UpdateUserParams) (application.User, error) {
	if s.updateFunc == nil {
		return application.User{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *userServiceStub) DeleteUser(ctx context.Context, principal application.Principal, userID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, userID)
}

func (s *userServiceStub) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	if s.getFunc == nil {
		return application.User{}, nil
	}
	return s.getFunc(ctx, principal, userID)
}

func (s *userServiceStub) ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal)
}

func (s *userServiceStub) EnrollTwoFactor(ctx context.Context, principal application.Principal) (application.TwoFactorEnrollment, error) {
	if s.enrollFunc == nil {
		return application.TwoFactorEnrollment{}, nil
	}
	return s.enrollFunc(ctx, principal)
}

func (s *userServiceStub) ConfirmTwoFactor(ctx context.Context, principal application.Principal, code string) error {
	if s.confirmFunc == nil {
		return nil
	}
	return s.confirmFunc(ctx, principal, code)
}

func (s *userServiceStub) DisableTwoFactor(ctx context.Context, principal application.Principal, userID string) error {
	if s.disableFunc == nil {
		return nil
	}
	return s.disableFunc(ctx, principal, userID)
}

type equipmentServiceStub struct {
	createFunc    func(ctx context.Context, params application.CreateEquipmentParams) (application.Equipment, error)
	updateFunc    func(ctx context.Context, params application.UpdateEquipmentParams) (application.Equipment, error)
	deleteFunc    func(ctx context.Context, principal application.Principal, equipmentID string) error
	getFunc       func(ctx context.Context, principal application.Principal, equipmentID string) (application.Equipment, error)
	listFunc      func(ctx context.Context, params application.ListEquipmentParams) ([]application.Equipment, error)
	historyFunc   func(ctx context.Context, principal application.Principal, equipmentID string) ([]application.HistoryEntry, error)
	inventoryFunc func(ctx context.Context, params application.InventoryCheckParams) error
}

func (s *equipmentServiceStub) CreateEquipment(ctx context.Context, params application.CreateEquipmentParams) (application.Equipment, error) {
	if s.createFunc == nil {
		return application.Equipment{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *equipmentServiceStub) UpdateEquipment(ctx context.Context, params application.UpdateEquipmentParams) (application.Equipment, error) {
	if s.updateFunc == nil {
		return application.Equipment{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *equipmentServiceStub) DeleteEquipment(ctx context.Context, principal application.Principal, equipmentID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, equipmentID)
}

func (s *equipmentServiceStub) GetEquipment(ctx context.Context, principal application.Principal, equipmentID string) (application.Equipment, error) {
	if s.getFunc == nil {
		return application.Equipment{}, nil
	}
	return s.getFunc(ctx, principal, equipmentID)
}

func (s *equipmentServiceStub) ListEquipment(ctx context.Context, params application.ListEquipmentParams) ([]application.Equipment, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, params)
}

func (s *equipmentServiceStub) ListHistory(ctx context.Context, principal application.Principal, equipmentID string) ([]application.HistoryEntry, error) {
	if s.historyFunc == nil {
		return nil, nil
	}
	return s.historyFunc(ctx, principal, equipmentID)
}

func (s *equipmentServiceStub) InventoryCheck(ctx context.Context, params application.InventoryCheckParams) error {
	if s.inventoryFunc == nil {
		return nil
	}
	return s.inventoryFunc(ctx, params)
}

type licenseServiceStub struct {
	createFunc func(ctx context.Context, params application.CreateLicenseParams) (application.License, error)
	updateFunc func(ctx context.Context, params application.UpdateLicenseParams) (application.License, error)
	deleteFunc func(ctx context.Context, principal application.Principal, licenseID string) error
	getFunc    func(ctx context.Context, principal application.Principal, licenseID string) (application.License, error)
	listFunc   func(ctx context.Context, principal application.Principal) ([]application.License, error)
}

func (s *licenseServiceStub) CreateLicense(ctx context.Context, params application.CreateLicenseParams) (application.License, error) {
	if s.createFunc == nil {
		return application.License{}, nil
	}
	return s.createFunc(ctx, params)
}

func (s *licenseServiceStub) UpdateLicense(ctx context.Context, params application.UpdateLicenseParams) (application.License, error) {
	if s.updateFunc == nil {
		return application.License{}, nil
	}
	return s.updateFunc(ctx, params)
}

func (s *licenseServiceStub) DeleteLicense(ctx context.Context, principal application.Principal, licenseID string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, principal, licenseID)
}

func (s *licenseServiceStub) GetLicense(ctx context.Context, principal application.Principal, licenseID string) (application.License, error) {
	if s.getFunc == nil {
		return application.License{}, nil
	}
	return s.getFunc(ctx, principal, licenseID)
}

func (s *licenseServiceStub) ListLicenses(ctx context.Context, principal application.Principal) ([]application.License, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal)
}

type auditServiceStub struct {
	listFunc func(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error)
}

func (s *auditServiceStub) ListAudit(ctx context.Context, principal application.Principal, limit int) ([]application.AuditEntry, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal, limit)
}

type settingsServiceStub struct {
	listFunc   func(ctx context.Context, principal application.Principal) ([]application.Setting, error)
	updateFunc func(ctx context.Context, principal application.Principal, settings []application.Setting) error
}

func (s *settingsServiceStub) ListSettings(ctx context.Context, principal application.Principal) ([]application.Setting, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, principal)
}

func (s *settingsServiceStub) UpdateSettings(ctx context.Context, principal application.Principal, settings []application.Setting) error {
	if s.updateFunc == nil {
		return nil
	}
	return s.updateFunc(ctx, principal, settings)
}
