package stage

import "time"

// Staging rows mirror their source tables column for column, plus the
// source change-tracking timestamps. Tables are rebuilt from scratch on
// every batch, so none of them carry a primary key.

type Office struct {
	OfficeCode      string     `gorm:"column:office_code"`
	City            *string    `gorm:"column:city"`
	Phone           *string    `gorm:"column:phone"`
	AddressLine1    *string    `gorm:"column:address_line1"`
	AddressLine2    *string    `gorm:"column:address_line2"`
	State           *string    `gorm:"column:state"`
	Country         *string    `gorm:"column:country"`
	PostalCode      *string    `gorm:"column:postal_code"`
	Territory       *string    `gorm:"column:territory"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (Office) TableName() string { return "stg_offices" }

type Employee struct {
	EmployeeNumber  int64      `gorm:"column:employee_number"`
	LastName        *string    `gorm:"column:last_name"`
	FirstName       *string    `gorm:"column:first_name"`
	Extension       *string    `gorm:"column:extension"`
	Email           *string    `gorm:"column:email"`
	OfficeCode      *string    `gorm:"column:office_code"`
	ReportsTo       *int64     `gorm:"column:reports_to"`
	JobTitle        *string    `gorm:"column:job_title"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (Employee) TableName() string { return "stg_employees" }

type Customer struct {
	CustomerNumber         int64      `gorm:"column:customer_number"`
	CustomerName           *string    `gorm:"column:customer_name"`
	ContactLastName        *string    `gorm:"column:contact_last_name"`
	ContactFirstName       *string    `gorm:"column:contact_first_name"`
	Phone                  *string    `gorm:"column:phone"`
	AddressLine1           *string    `gorm:"column:address_line1"`
	AddressLine2           *string    `gorm:"column:address_line2"`
	City                   *string    `gorm:"column:city"`
	State                  *string    `gorm:"column:state"`
	PostalCode             *string    `gorm:"column:postal_code"`
	Country                *string    `gorm:"column:country"`
	SalesRepEmployeeNumber *int64     `gorm:"column:sales_rep_employee_number"`
	CreditLimit            *float64   `gorm:"column:credit_limit"`
	CreateTimestamp        *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp        *time.Time `gorm:"column:update_timestamp"`
}

func (Customer) TableName() string { return "stg_customers" }

type ProductLine struct {
	ProductLine     string     `gorm:"column:product_line"`
	TextDescription *string    `gorm:"column:text_description"`
	HTMLDescription *string    `gorm:"column:html_description"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (ProductLine) TableName() string { return "stg_product_lines" }

type Product struct {
	ProductCode        string     `gorm:"column:product_code"`
	ProductName        *string    `gorm:"column:product_name"`
	ProductLine        *string    `gorm:"column:product_line"`
	ProductScale       *string    `gorm:"column:product_scale"`
	ProductVendor      *string    `gorm:"column:product_vendor"`
	ProductDescription *string    `gorm:"column:product_description"`
	QuantityInStock    *int64     `gorm:"column:quantity_in_stock"`
	BuyPrice           *float64   `gorm:"column:buy_price"`
	MSRP               *float64   `gorm:"column:msrp"`
	CreateTimestamp    *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp    *time.Time `gorm:"column:update_timestamp"`
}

func (Product) TableName() string { return "stg_products" }

type Order struct {
	OrderNumber     int64      `gorm:"column:order_number"`
	OrderDate       *time.Time `gorm:"column:order_date"`
	CustomerNumber  int64      `gorm:"column:customer_number"`
	RequiredDate    *time.Time `gorm:"column:required_date"`
	CancelledDate   *time.Time `gorm:"column:cancelled_date"`
	ShippedDate     *time.Time `gorm:"column:shipped_date"`
	Status          *string    `gorm:"column:status"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (Order) TableName() string { return "stg_orders" }

type OrderDetail struct {
	OrderNumber     int64      `gorm:"column:order_number"`
	ProductCode     string     `gorm:"column:product_code"`
	QuantityOrdered *int64     `gorm:"column:quantity_ordered"`
	PriceEach       *float64   `gorm:"column:price_each"`
	OrderLineNumber *int64     `gorm:"column:order_line_number"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (OrderDetail) TableName() string { return "stg_order_details" }

type Payment struct {
	CustomerNumber  int64      `gorm:"column:customer_number"`
	CheckNumber     string     `gorm:"column:check_number"`
	PaymentDate     *time.Time `gorm:"column:payment_date"`
	Amount          *float64   `gorm:"column:amount"`
	CreateTimestamp *time.Time `gorm:"column:create_timestamp"`
	UpdateTimestamp *time.Time `gorm:"column:update_timestamp"`
}

func (Payment) TableName() string { return "stg_payments" }

// Models lists every staging model for migration helpers and tests.
func Models() []any {
	return []any{
		&Office{}, &Employee{}, &Customer{}, &ProductLine{},
		&Product{}, &Order{}, &OrderDetail{}, &Payment{},
	}
}
