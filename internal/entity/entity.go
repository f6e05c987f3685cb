package entity

// ParentRef resolves a surrogate key column on the child table from a
// parent dimension during the merge. Optional refs use a LEFT JOIN so
// children without a parent still load.
type ParentRef struct {
	LocalColumn     string
	ParentTable     string
	ParentKey       string
	ParentSurrogate string
	TargetColumn    string
	RefreshOnUpdate bool
	Optional        bool
}

// SelfRef resolves a surrogate reference into the same table in a
// final pass, after all rows of the entity are present.
type SelfRef struct {
	LocalColumn  string
	KeyColumn    string
	Surrogate    string
	TargetColumn string
}

// Spec describes one source entity end to end: where it is extracted
// from, where it stages, and how it merges into the warehouse.
type Spec struct {
	Name           string
	SourceTable    string
	StageTable     string
	WarehouseTable string
	Surrogate      string

	NaturalKey []string
	// Attributes are refreshed on every merge when the row already exists.
	Attributes []string
	// InsertOnly columns are written once and never updated.
	InsertOnly []string

	Parents []ParentRef
	Self    *SelfRef
}

// SourceColumns is the full extract column list, in CSV order.
func (s Spec) SourceColumns() []string {
	cols := make([]string, 0, len(s.NaturalKey)+len(s.InsertOnly)+len(s.Attributes)+2)
	cols = append(cols, s.NaturalKey...)
	cols = append(cols, s.InsertOnly...)
	cols = append(cols, s.Attributes...)
	cols = append(cols, "create_timestamp", "update_timestamp")
	return cols
}

// All returns every entity in foreign-key dependency order: parents
// merge before the children that resolve surrogates against them.
func All() []Spec {
	return []Spec{
		{
			Name:           "offices",
			SourceTable:    "offices",
			StageTable:     "stg_offices",
			WarehouseTable: "dw_offices",
			Surrogate:      "dw_office_id",
			NaturalKey:     []string{"office_code"},
			Attributes: []string{
				"city", "phone", "address_line1", "address_line2",
				"state", "country", "postal_code", "territory",
			},
		},
		{
			Name:           "employees",
			SourceTable:    "employees",
			StageTable:     "stg_employees",
			WarehouseTable: "dw_employees",
			Surrogate:      "dw_employee_id",
			NaturalKey:     []string{"employee_number"},
			Attributes: []string{
				"last_name", "first_name", "extension", "email",
				"office_code", "reports_to", "job_title",
			},
			Parents: []ParentRef{{
				LocalColumn:     "office_code",
				ParentTable:     "dw_offices",
				ParentKey:       "office_code",
				ParentSurrogate: "dw_office_id",
				TargetColumn:    "dw_office_id",
				RefreshOnUpdate: true,
			}},
			Self: &SelfRef{
				LocalColumn:  "reports_to",
				KeyColumn:    "employee_number",
				Surrogate:    "dw_employee_id",
				TargetColumn: "dw_reporting_employee_id",
			},
		},
		{
			Name:           "customers",
			SourceTable:    "customers",
			StageTable:     "stg_customers",
			WarehouseTable: "dw_customers",
			Surrogate:      "dw_customer_id",
			NaturalKey:     []string{"customer_number"},
			Attributes: []string{
				"customer_name", "contact_last_name", "contact_first_name",
				"phone", "address_line1", "address_line2", "city", "state",
				"postal_code", "country", "sales_rep_employee_number",
				"credit_limit",
			},
			Parents: []ParentRef{{
				LocalColumn:     "sales_rep_employee_number",
				ParentTable:     "dw_employees",
				ParentKey:       "employee_number",
				ParentSurrogate: "dw_employee_id",
				TargetColumn:    "dw_sales_rep_employee_id",
				RefreshOnUpdate: true,
				// Some customers have no sales rep assigned.
				Optional: true,
			}},
		},
		{
			Name:           "productlines",
			SourceTable:    "productlines",
			StageTable:     "stg_product_lines",
			WarehouseTable: "dw_product_lines",
			Surrogate:      "dw_product_line_id",
			NaturalKey:     []string{"product_line"},
			Attributes:     []string{"text_description", "html_description"},
		},
		{
			Name:           "products",
			SourceTable:    "products",
			StageTable:     "stg_products",
			WarehouseTable: "dw_products",
			Surrogate:      "dw_product_id",
			NaturalKey:     []string{"product_code"},
			Attributes: []string{
				"product_name", "product_line", "product_scale",
				"product_vendor", "product_description",
				"quantity_in_stock", "buy_price", "msrp",
			},
			Parents: []ParentRef{{
				LocalColumn:     "product_line",
				ParentTable:     "dw_product_lines",
				ParentKey:       "product_line",
				ParentSurrogate: "dw_product_line_id",
				TargetColumn:    "dw_product_line_id",
				RefreshOnUpdate: true,
			}},
		},
		{
			Name:           "orders",
			SourceTable:    "orders",
			StageTable:     "stg_orders",
			WarehouseTable: "dw_orders",
			Surrogate:      "dw_order_id",
			NaturalKey:     []string{"order_number"},
			Attributes: []string{
				"required_date", "cancelled_date", "shipped_date", "status",
			},
			InsertOnly: []string{"order_date", "customer_number"},
			Parents: []ParentRef{{
				LocalColumn:     "customer_number",
				ParentTable:     "dw_customers",
				ParentKey:       "customer_number",
				ParentSurrogate: "dw_customer_id",
				TargetColumn:    "dw_customer_id",
			}},
		},
		{
			Name:           "orderdetails",
			SourceTable:    "orderdetails",
			StageTable:     "stg_order_details",
			WarehouseTable: "dw_order_details",
			Surrogate:      "dw_order_detail_id",
			NaturalKey:     []string{"order_number", "product_code"},
			Attributes: []string{
				"quantity_ordered", "price_each", "order_line_number",
			},
			Parents: []ParentRef{
				{
					LocalColumn:     "order_number",
					ParentTable:     "dw_orders",
					ParentKey:       "order_number",
					ParentSurrogate: "dw_order_id",
					TargetColumn:    "dw_order_id",
				},
				{
					LocalColumn:     "product_code",
					ParentTable:     "dw_products",
					ParentKey:       "product_code",
					ParentSurrogate: "dw_product_id",
					TargetColumn:    "dw_product_id",
				},
			},
		},
		{
			Name:           "payments",
			SourceTable:    "payments",
			StageTable:     "stg_payments",
			WarehouseTable: "dw_payments",
			Surrogate:      "dw_payment_id",
			NaturalKey:     []string{"customer_number", "check_number"},
			Attributes:     []string{"payment_date", "amount"},
			Parents: []ParentRef{{
				LocalColumn:     "customer_number",
				ParentTable:     "dw_customers",
				ParentKey:       "customer_number",
				ParentSurrogate: "dw_customer_id",
				TargetColumn:    "dw_customer_id",
			}},
		},
	}
}

// ByName looks an entity up by its pipeline name.
func ByName(name string) (Spec, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Names returns pipeline names in dependency order.
func Names() []string {
	specs := All()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
