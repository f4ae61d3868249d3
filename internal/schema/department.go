package schema

// Department describes the department collection as exposed by the record
// service.
func Department() Schema {
	return Schema{
		Name:       "department",
		Collection: "department1",
		Fields: []Field{
			{Name: "name", Label: "Department name", Type: TypeString, Required: true, Searchable: true},
			{Name: "code", Label: "Department code", Type: TypeString, Required: true, Searchable: true},
			{Name: "head", Label: "Department head", Type: TypeString, Required: true, Searchable: true},
			{Name: "location", Label: "Location", Type: TypeString, Required: true},
			{Name: "establishedDate", Label: "Established date", Type: TypeDate, Required: true, NotFuture: true},
			{Name: "studentCount", Label: "Student count", Type: TypeInt, NonNeg: true},
			{Name: "facultyCount", Label: "Faculty count", Type: TypeInt, NonNeg: true},
			{Name: "description", Label: "Description", Type: TypeString},
		},
		Filters:          []string{"location"},
		DefaultSortField: "name",
	}
}
