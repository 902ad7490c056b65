package dto

// CollabAuthRequest mirrors the auth callback the collaboration client
// fires when joining a room. Room is optional: absent means the client
// wants a general-purpose grant.
type CollabAuthRequest struct {
	UserId   string                 `json:"userId" validate:"required"`
	UserInfo map[string]interface{} `json:"userInfo"`
	TenantId string                 `json:"tenantId"`
	Room     string                 `json:"room"`
}

// CollabAuthResponse wraps the grant the way the upstream SDK expects:
// an HTTP-ish status plus an opaque body holding the signed token.
type CollabAuthResponse struct {
	Status int             `json:"status"`
	Body   CollabAuthGrant `json:"body"`
}

type CollabAuthGrant struct {
	Token    string   `json:"token"`
	UserId   string   `json:"userId"`
	Patterns []string `json:"patterns"`
}
