package address

// Address belongs to exactly one user. At most one address per user carries
// IsDefault.
type Address struct {
	ID           string `json:"addressId"`
	UserID       string `json:"userId"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	IsDefault    bool   `json:"isDefault"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}
