package middleware

import "context"

type contextKey string

const (
	ctxStaffID   contextKey = "staff_id"
	ctxStaffRole contextKey = "staff_role"
)

func StaffIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStaffID).(string); ok {
		return v
	}
	return ""
}

func StaffRoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStaffRole).(string); ok {
		return v
	}
	return ""
}

// WithStaff injects the back-office identity for downstream handlers.
func WithStaff(ctx context.Context, staffID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxStaffID, staffID)
	return context.WithValue(ctx, ctxStaffRole, role)
}
