package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/asset-inventory/internal/application"
	"github.com/example/asset-inventory/internal/config"
	httptransport "github.com/example/asset-inventory/internal/http"
	"github.com/example/asset-inventory/internal/persistence"
	"github.com/example/asset-inventory/internal/persistence/sqlite"
	"github.com/example/asset-inventory/internal/persistence/sqlite/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	seed := migration.SeedConfig{
		AdminUsername: cfg.AdminUsername,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
		CompanyName:   cfg.CompanyName,
	}
	if err := store.Migrate(context.Background(), seed, logger); err != nil {
		var acquireErr *migration.AcquireError
		if errors.As(err, &acquireErr) {
			// The service still starts so operators can inspect it; requests
			// against a missing schema will surface as storage errors.
			logger.Error("failed to borrow a connection for migrations, continuing with the existing schema", "error", err)
		} else {
			logger.Error("failed to build the migration list", "error", err)
			os.Exit(1)
		}
	}

	tokens, err := application.NewTokenCodec([]byte(cfg.SessionSecret), time.Now)
	if err != nil {
		logger.Error("failed to initialize the token codec", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := newUserRepositoryAdapter(store.Users)
	credentialStore := newCredentialStoreAdapter(store.Users)
	sessionRepo := newSessionRepositoryAdapter(store.Sessions)
	equipmentRepo := newEquipmentRepositoryAdapter(store.Equipment)
	licenseRepo := newLicenseRepositoryAdapter(store.Licenses)
	auditLog := newAuditLogAdapter(store.Audit)
	settingsRepo := newSettingsRepositoryAdapter(store.Config)

	authService := application.NewAuthService(credentialStore, sessionRepo, tokens, idGenerator, now, cfg.SessionTTL, logger)
	userService := application.NewUserService(userRepo, auditLog, application.NewPasswordHasher(cfg.BcryptCost), cfg.CompanyName, idGenerator, now, logger)
	equipmentService := application.NewEquipmentService(equipmentRepo, auditLog, idGenerator, now, logger)
	licenseService := application.NewLicenseService(licenseRepo, auditLog, idGenerator, now, logger)
	settingsService := application.NewSettingsService(settingsRepo, auditLog, now, logger)
	auditService := application.NewAuditService(auditLog)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Users:     httptransport.NewUserHandler(userService, logger),
		Equipment: httptransport.NewEquipmentHandler(equipmentService, logger),
		Licenses:  httptransport.NewLicenseHandler(licenseService, logger),
		Audit:     httptransport.NewAuditHandler(auditService, logger),
		Settings:  httptransport.NewSettingsHandler(settingsService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.EqualFold(r.URL.Path, "/sessions") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("inventory API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserCredentials(ctx context.Context, id string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return toApplicationCredentials(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	stored, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(stored))
	for _, user := range stored {
		users = append(users, toApplicationUser(user))
	}
	return users, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return toApplicationCredentials(stored), nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, id, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type equipmentRepositoryAdapter struct {
	repo persistence.EquipmentRepository
}

func newEquipmentRepositoryAdapter(repo persistence.EquipmentRepository) *equipmentRepositoryAdapter {
	return &equipmentRepositoryAdapter{repo: repo}
}

func (a *equipmentRepositoryAdapter) CreateEquipment(ctx context.Context, eq application.Equipment) (application.Equipment, error) {
	if err := a.repo.CreateEquipment(ctx, toPersistenceEquipment(eq)); err != nil {
		return application.Equipment{}, err
	}
	stored, err := a.repo.GetEquipment(ctx, eq.ID)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) GetEquipment(ctx context.Context, id string) (application.Equipment, error) {
	stored, err := a.repo.GetEquipment(ctx, id)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) UpdateEquipment(ctx context.Context, eq application.Equipment) (application.Equipment, error) {
	if err := a.repo.UpdateEquipment(ctx, toPersistenceEquipment(eq)); err != nil {
		return application.Equipment{}, err
	}
	stored, err := a.repo.GetEquipment(ctx, eq.ID)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) DeleteEquipment(ctx context.Context, id string) error {
	return a.repo.DeleteEquipment(ctx, id)
}

func (a *equipmentRepositoryAdapter) ListEquipment(ctx context.Context, filter application.EquipmentFilter) ([]application.Equipment, error) {
	stored, err := a.repo.ListEquipment(ctx, persistence.EquipmentFilter{
		Status:     filter.Status,
		Category:   filter.Category,
		AssignedTo: filter.AssignedTo,
	})
	if err != nil {
		return nil, err
	}
	items := make([]application.Equipment, 0, len(stored))
	for _, eq := range stored {
		items = append(items, toApplicationEquipment(eq))
	}
	return items, nil
}

func (a *equipmentRepositoryAdapter) AppendHistory(ctx context.Context, entry application.HistoryEntry) error {
	return a.repo.AppendHistory(ctx, persistence.HistoryEntry{
		EquipmentID: entry.EquipmentID,
		Actor:       entry.Actor,
		ChangeType:  entry.ChangeType,
		Detail:      entry.Detail,
		CreatedAt:   entry.CreatedAt,
	})
}

func (a *equipmentRepositoryAdapter) ListHistory(ctx context.Context, equipmentID string) ([]application.HistoryEntry, error) {
	stored, err := a.repo.ListHistory(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	entries := make([]application.HistoryEntry, 0, len(stored))
	for _, entry := range stored {
		entries = append(entries, application.HistoryEntry{
			ID:          entry.ID,
			EquipmentID: entry.EquipmentID,
			Actor:       entry.Actor,
			ChangeType:  entry.ChangeType,
			Detail:      entry.Detail,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return entries, nil
}

func (a *equipmentRepositoryAdapter) ApplyInventoryCheck(ctx context.Context, items []application.InventoryCheckItem, actor string, checkedAt time.Time) error {
	converted := make([]persistence.InventoryCheckItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, persistence.InventoryCheckItem{
			EquipmentID: item.EquipmentID,
			Status:      item.Status,
			Notes:       item.Notes,
		})
	}
	return a.repo.ApplyInventoryCheck(ctx, converted, actor, checkedAt)
}

type licenseRepositoryAdapter struct {
	repo persistence.LicenseRepository
}

func newLicenseRepositoryAdapter(repo persistence.LicenseRepository) *licenseRepositoryAdapter {
	return &licenseRepositoryAdapter{repo: repo}
}

func (a *licenseRepositoryAdapter) CreateLicense(ctx context.Context, lic application.License) (application.License, error) {
	if err := a.repo.CreateLicense(ctx, toPersistenceLicense(lic)); err != nil {
		return application.License{}, err
	}
	stored, err := a.repo.GetLicense(ctx, lic.ID)
	if err != nil {
		return application.License{}, err
	}
	return toApplicationLicense(stored), nil
}

func (a *licenseRepositoryAdapter) GetLicense(ctx context.Context, id string) (application.License, error) {
	stored, err := a.repo.GetLicense(ctx, id)
	if err != nil {
		return application.License{}, err
	}
	return toApplicationLicense(stored), nil
}

func (a *licenseRepositoryAdapter) UpdateLicense(ctx context.Context, lic application.License) (application.License, error) {
	if err := a.repo.UpdateLicense(ctx, toPersistenceLicense(lic)); err != nil {
		return application.License{}, err
	}
	stored, err := a.repo.GetLicense(ctx, lic.ID)
	if err != nil {
		return application.License{}, err
	}
	return toApplicationLicense(stored), nil
}

func (a *licenseRepositoryAdapter) DeleteLicense(ctx context.Context, id string) error {
	return a.repo.DeleteLicense(ctx, id)
}

func (a *licenseRepositoryAdapter) ListLicenses(ctx context.Context) ([]application.License, error) {
	stored, err := a.repo.ListLicenses(ctx)
	if err != nil {
		return nil, err
	}
	licenses := make([]application.License, 0, len(stored))
	for _, lic := range stored {
		licenses = append(licenses, toApplicationLicense(lic))
	}
	return licenses, nil
}

type auditLogAdapter struct {
	repo persistence.AuditLogRepository
}

func newAuditLogAdapter(repo persistence.AuditLogRepository) *auditLogAdapter {
	return &auditLogAdapter{repo: repo}
}

func (a *auditLogAdapter) AppendAudit(ctx context.Context, entry application.AuditEntry) error {
	return a.repo.AppendAudit(ctx, persistence.AuditEntry{
		Actor:      entry.Actor,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt,
	})
}

func (a *auditLogAdapter) ListAudit(ctx context.Context, limit int) ([]application.AuditEntry, error) {
	stored, err := a.repo.ListAudit(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]application.AuditEntry, 0, len(stored))
	for _, entry := range stored {
		entries = append(entries, application.AuditEntry{
			ID:         entry.ID,
			Actor:      entry.Actor,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Detail:     entry.Detail,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return entries, nil
}

type settingsRepositoryAdapter struct {
	repo persistence.AppConfigRepository
}

func newSettingsRepositoryAdapter(repo persistence.AppConfigRepository) *settingsRepositoryAdapter {
	return &settingsRepositoryAdapter{repo: repo}
}

func (a *settingsRepositoryAdapter) GetSetting(ctx context.Context, key string) (application.Setting, error) {
	stored, err := a.repo.GetConfig(ctx, key)
	if err != nil {
		return application.Setting{}, err
	}
	return application.Setting{Key: stored.Key, Value: stored.Value}, nil
}

func (a *settingsRepositoryAdapter) SetSetting(ctx context.Context, setting application.Setting) error {
	return a.repo.SetConfig(ctx, persistence.ConfigEntry{Key: setting.Key, Value: setting.Value})
}

func (a *settingsRepositoryAdapter) ListSettings(ctx context.Context) ([]application.Setting, error) {
	stored, err := a.repo.ListConfig(ctx)
	if err != nil {
		return nil, err
	}
	settings := make([]application.Setting, 0, len(stored))
	for _, entry := range stored {
		settings = append(settings, application.Setting{Key: entry.Key, Value: entry.Value})
	}
	return settings, nil
}

func toPersistenceUser(creds application.UserCredentials) persistence.User {
	return persistence.User{
		ID:           creds.User.ID,
		Username:     creds.User.Username,
		Email:        creds.User.Email,
		DisplayName:  creds.User.DisplayName,
		PasswordHash: creds.PasswordHash,
		Role:         string(creds.User.Role),
		TOTPSecret:   creds.TOTPSecret,
		TOTPEnabled:  creds.User.TOTPEnabled,
		CreatedAt:    creds.User.CreatedAt,
		UpdatedAt:    creds.User.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        application.Role(user.Role),
		TOTPEnabled: user.TOTPEnabled,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toApplicationCredentials(user persistence.User) application.UserCredentials {
	return application.UserCredentials{
		User:         toApplicationUser(user),
		PasswordHash: user.PasswordHash,
		TOTPSecret:   user.TOTPSecret,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toPersistenceEquipment(eq application.Equipment) persistence.Equipment {
	return persistence.Equipment{
		ID:              eq.ID,
		AssetTag:        eq.AssetTag,
		Name:            eq.Name,
		Category:        eq.Category,
		Status:          eq.Status,
		AssignedTo:      eq.AssignedTo,
		PurchaseDate:    eq.PurchaseDate,
		WarrantyExpires: eq.WarrantyExpires,
		Notes:           eq.Notes,
		LastCheckedAt:   eq.LastCheckedAt,
		CreatedAt:       eq.CreatedAt,
		UpdatedAt:       eq.UpdatedAt,
	}
}

func toApplicationEquipment(eq persistence.Equipment) application.Equipment {
	return application.Equipment{
		ID:              eq.ID,
		AssetTag:        eq.AssetTag,
		Name:            eq.Name,
		Category:        eq.Category,
		Status:          eq.Status,
		AssignedTo:      eq.AssignedTo,
		PurchaseDate:    eq.PurchaseDate,
		WarrantyExpires: eq.WarrantyExpires,
		Notes:           eq.Notes,
		LastCheckedAt:   eq.LastCheckedAt,
		CreatedAt:       eq.CreatedAt,
		UpdatedAt:       eq.UpdatedAt,
	}
}

func toPersistenceLicense(lic application.License) persistence.License {
	return persistence.License{
		ID:         lic.ID,
		Product:    lic.Product,
		Vendor:     lic.Vendor,
		LicenseKey: lic.LicenseKey,
		Seats:      lic.Seats,
		ExpiresOn:  lic.ExpiresOn,
		Notes:      lic.Notes,
		CreatedAt:  lic.CreatedAt,
		UpdatedAt:  lic.UpdatedAt,
	}
}

func toApplicationLicense(lic persistence.License) application.License {
	return application.License{
		ID:         lic.ID,
		Product:    lic.Product,
		Vendor:     lic.Vendor,
		LicenseKey: lic.LicenseKey,
		Seats:      lic.Seats,
		ExpiresOn:  lic.ExpiresOn,
		Notes:      lic.Notes,
		CreatedAt:  lic.CreatedAt,
		UpdatedAt:  lic.UpdatedAt,
	}
}
