package procurement

// Department is the business unit a request is charged to
type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentDesign      Department = "Design"
	DepartmentMarketing   Department = "Marketing"
	DepartmentSales       Department = "Sales"
	DepartmentFinance     Department = "Finance"
	DepartmentHR          Department = "HR"
	DepartmentOperations  Department = "Operations"
	DepartmentLegal       Department = "Legal"
	DepartmentIT          Department = "IT"
)

// AllDepartments returns the fixed department set
func AllDepartments() []Department {
	return []Department{
		DepartmentEngineering,
		DepartmentDesign,
		DepartmentMarketing,
		DepartmentSales,
		DepartmentFinance,
		DepartmentHR,
		DepartmentOperations,
		DepartmentLegal,
		DepartmentIT,
	}
}

// IsValid checks if the department is one of the known departments
func (d Department) IsValid() bool {
	for _, known := range AllDepartments() {
		if d == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Department
func (d Department) String() string {
	return string(d)
}
