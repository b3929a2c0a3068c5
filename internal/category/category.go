package category

// Category is an apparel category shown in the storefront navigation.
type Category struct {
	ID       int     `json:"categoryId"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Ord      int     `json:"ord"`
}
