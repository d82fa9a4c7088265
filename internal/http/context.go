package http

import (
	"context"
	"log/slog"

	"github.com/example/asset-inventory/internal/application"
	"github.com/example/asset-inventory/internal/logging"
)

type contextKey string

const (
	principalContextKey   contextKey = "principal"
	userIDContextKey      contextKey = "user_id"
	equipmentIDContextKey contextKey = "equipment_id"
	licenseIDContextKey   contextKey = "license_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithEquipmentID injects the equipment identifier resolved from the request path.
func ContextWithEquipmentID(ctx context.Context, equipmentID string) context.Context {
	return context.WithValue(ctx, equipmentIDContextKey, equipmentID)
}

// EquipmentIDFromContext extracts an equipment identifier previously associated with the context.
func EquipmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(equipmentIDContextKey).(string)
	return id, ok
}

// ContextWithLicenseID injects the license identifier resolved from the request path.
func ContextWithLicenseID(ctx context.Context, licenseID string) context.Context {
	return context.WithValue(ctx, licenseIDContextKey, licenseID)
}

// LicenseIDFromContext extracts a license identifier previously associated with the context.
func LicenseIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(licenseIDContextKey).(string)
	return id, ok
}

// ContextWithLogger stores a request scoped logger for downstream handlers.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext retrieves the request scoped logger, or nil when absent.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
