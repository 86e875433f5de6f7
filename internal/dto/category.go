package dto

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type AssignCategoryRequest struct {
	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
}

type ProductResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	NormalizedName string  `json:"normalizedName"`
	Unit           string  `json:"unit"`
	CategoryID     *string `json:"categoryId"`
}
