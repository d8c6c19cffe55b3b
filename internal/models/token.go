package models

// TokenMetadata follows the NEP-177 token metadata layout.
type TokenMetadata struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Media         string `json:"media,omitempty"`
	MediaHash     string `json:"media_hash,omitempty"`
	Copies        uint32 `json:"copies,omitempty"`
	IssuedAt      string `json:"issued_at,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	StartsAt      string `json:"starts_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	Extra         string `json:"extra,omitempty"`
	Reference     string `json:"reference" binding:"required"`
	ReferenceHash string `json:"reference_hash,omitempty"`
}

// GameToken is one entry of the append-only token ledger. Only OwnerUserID
// ever changes, and only when users are merged.
type GameToken struct {
	ID          uint32         `json:"id"`
	OwnerUserID uint32         `json:"owner_user_id"`
	MetadataRef string         `json:"metadata_ref"`
	Metadata    *TokenMetadata `json:"metadata,omitempty"`
}

// Token is the NFT view of a game token, resolved against the owner's
// bound account.
type Token struct {
	ID          string         `json:"token_id"`
	OwnerID     string         `json:"owner_id"`
	OwnerUserID uint32         `json:"owner_user_id"`
	Metadata    *TokenMetadata `json:"metadata,omitempty"`
}

// ContractMetadata follows the NEP-177 contract metadata layout.
type ContractMetadata struct {
	Spec          string `json:"spec" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Symbol        string `json:"symbol" binding:"required"`
	Icon          string `json:"icon,omitempty"`
	BaseURI       string `json:"base_uri,omitempty"`
	Reference     string `json:"reference,omitempty"`
	ReferenceHash string `json:"reference_hash,omitempty"`
}
