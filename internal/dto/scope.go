package dto

// TenantScope keeps the two sources of a write's tenant id apart: whatever
// the client sent, and whatever the authorization pipeline resolved from the
// caller's own account.
type TenantScope struct {
	ClientSupplied string
	ServerTrusted  string
}

// Resolve returns the tenant id a request acts on. A server-trusted value
// always wins; the client value is only used when the pipeline resolved
// none, as on public routes where the tenant comes from the path.
func (s TenantScope) Resolve() string {
	if s.ServerTrusted != "" {
		return s.ServerTrusted
	}
	return s.ClientSupplied
}

// Overridden reports whether the client asked for a tenant other than the
// one it was pinned to.
func (s TenantScope) Overridden() bool {
	return s.ServerTrusted != "" && s.ClientSupplied != "" && s.ClientSupplied != s.ServerTrusted
}

// Trusted reports whether the resolved tenant came from the pipeline.
func (s TenantScope) Trusted() bool {
	return s.ServerTrusted != ""
}
