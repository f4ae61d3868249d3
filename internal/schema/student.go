package schema

// Student describes the student collection as exposed by the record service.
func Student() Schema {
	return Schema{
		Name:       "student",
		Collection: "student2",
		Fields: []Field{
			{Name: "firstName", Label: "First name", Type: TypeString, Required: true, Searchable: true},
			{Name: "lastName", Label: "Last name", Type: TypeString, Required: true, Searchable: true},
			{Name: "gender", Label: "Gender", Type: TypeEnum, Required: true, Enum: []string{"Male", "Female", "Other"}},
			{Name: "dateOfBirth", Label: "Date of birth", Type: TypeDate, Required: true},
			{Name: "gradeLevel", Label: "Grade level", Type: TypeEnum, Required: true, Enum: []string{"9th", "10th", "11th", "12th"}},
			{Name: "email", Label: "Email", Type: TypeString, Required: true, Searchable: true, Email: true},
			{Name: "contactPhone", Label: "Phone number", Type: TypeString, Required: true},
			{Name: "department", Label: "Department", Type: TypeString, Required: true},
		},
		Filters:          []string{"department", "gradeLevel"},
		DefaultSortField: "lastName",
	}
}
