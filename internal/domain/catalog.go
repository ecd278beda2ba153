package domain

// Catalog holds the reference lists shared across the application.
// It is built once at startup and passed by value; nothing mutates it afterwards.
type Catalog struct {
	WorkerCategories []string
	ProjectStages    []string
}

// DefaultCatalog returns the built-in worker categories and project stages
func DefaultCatalog() Catalog {
	return Catalog{
		WorkerCategories: []string{
			"Mason",
			"Helper",
			"Carpenter",
			"Electrician",
			"Plumber",
			"Painter",
			"Welder",
			"Bar Bender",
			"Tile Layer",
			"Supervisor",
		},
		ProjectStages: []string{
			"Site Preparation",
			"Foundation",
			"Structure",
			"Brickwork",
			"Roofing",
			"Electrical & Plumbing",
			"Plastering",
			"Flooring",
			"Finishing",
			"Handover",
		},
	}
}

// NewCatalog returns a catalog with the given lists, falling back to the defaults for empty ones
func NewCatalog(workerCategories, projectStages []string) Catalog {
	c := DefaultCatalog()
	if len(workerCategories) > 0 {
		c.WorkerCategories = append([]string(nil), workerCategories...)
	}
	if len(projectStages) > 0 {
		c.ProjectStages = append([]string(nil), projectStages...)
	}
	return c
}

// HasWorkerCategory reports whether name is one of the catalog's worker categories
func (c Catalog) HasWorkerCategory(name string) bool {
	for _, v := range c.WorkerCategories {
		if v == name {
			return true
		}
	}
	return false
}

// Stages returns a copy of the project stage list
func (c Catalog) Stages() []string {
	return append([]string(nil), c.ProjectStages...)
}

// Categories returns a copy of the worker category list
func (c Catalog) Categories() []string {
	return append([]string(nil), c.WorkerCategories...)
}
