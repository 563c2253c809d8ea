package models

type Project struct {
	Record
	Name      string `json:"name"`
	Shared    bool   `json:"is_shared"`
	SortOrder int64  `json:"sort_order"`
}

type ProjectPatch struct {
	Name      *string
	Shared    *bool
	SortOrder *int64
}

type Notebook struct {
	Record
	Name string `json:"name"`
}

type Tag struct {
	Record
	Name string `json:"name"`
}
