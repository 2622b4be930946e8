package products

// Product is the normalized record shape returned to gateway clients.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Family      string `json:"family"`
}
