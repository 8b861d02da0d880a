package server

import "context"

// recordAudit stores an audit entry for the acting principal. Failures are
// logged by the audit service and never fail the request.
func (s *Server) recordAudit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var target *string
	if targetID != "" {
		target = &targetID
	}
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, targetType, target, metadata)
}
