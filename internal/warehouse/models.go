package warehouse

import "time"

// Warehouse tables keep the source natural keys, generate surrogate
// identities, and stamp every write with the batch that produced it.

type Office struct {
	DWOfficeID         int64      `gorm:"column:dw_office_id;primaryKey;autoIncrement"`
	OfficeCode         string     `gorm:"column:office_code;uniqueIndex"`
	City               *string    `gorm:"column:city"`
	Phone              *string    `gorm:"column:phone"`
	AddressLine1       *string    `gorm:"column:address_line1"`
	AddressLine2       *string    `gorm:"column:address_line2"`
	State              *string    `gorm:"column:state"`
	Country            *string    `gorm:"column:country"`
	PostalCode         *string    `gorm:"column:postal_code"`
	Territory          *string    `gorm:"column:territory"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (Office) TableName() string { return "dw_offices" }

type Employee struct {
	DWEmployeeID          int64      `gorm:"column:dw_employee_id;primaryKey;autoIncrement"`
	EmployeeNumber        int64      `gorm:"column:employee_number;uniqueIndex"`
	LastName              *string    `gorm:"column:last_name"`
	FirstName             *string    `gorm:"column:first_name"`
	Extension             *string    `gorm:"column:extension"`
	Email                 *string    `gorm:"column:email"`
	OfficeCode            *string    `gorm:"column:office_code"`
	ReportsTo             *int64     `gorm:"column:reports_to"`
	JobTitle              *string    `gorm:"column:job_title"`
	DWOfficeID            *int64     `gorm:"column:dw_office_id"`
	DWReportingEmployeeID *int64     `gorm:"column:dw_reporting_employee_id"`
	SrcCreateTimestamp    *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp    *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp     *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp     *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo            int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate          *time.Time `gorm:"column:etl_batch_date"`
}

func (Employee) TableName() string { return "dw_employees" }

type Customer struct {
	DWCustomerID           int64      `gorm:"column:dw_customer_id;primaryKey;autoIncrement"`
	CustomerNumber         int64      `gorm:"column:customer_number;uniqueIndex"`
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
	DWSalesRepEmployeeID   *int64     `gorm:"column:dw_sales_rep_employee_id"`
	SrcCreateTimestamp     *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp     *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp      *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp      *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo             int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate           *time.Time `gorm:"column:etl_batch_date"`
}

func (Customer) TableName() string { return "dw_customers" }

type ProductLine struct {
	DWProductLineID    int64      `gorm:"column:dw_product_line_id;primaryKey;autoIncrement"`
	ProductLine        string     `gorm:"column:product_line;uniqueIndex"`
	TextDescription    *string    `gorm:"column:text_description"`
	HTMLDescription    *string    `gorm:"column:html_description"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (ProductLine) TableName() string { return "dw_product_lines" }

type Product struct {
	DWProductID        int64      `gorm:"column:dw_product_id;primaryKey;autoIncrement"`
	ProductCode        string     `gorm:"column:product_code;uniqueIndex"`
	ProductName        *string    `gorm:"column:product_name"`
	ProductLine        *string    `gorm:"column:product_line"`
	ProductScale       *string    `gorm:"column:product_scale"`
	ProductVendor      *string    `gorm:"column:product_vendor"`
	ProductDescription *string    `gorm:"column:product_description"`
	QuantityInStock    *int64     `gorm:"column:quantity_in_stock"`
	BuyPrice           *float64   `gorm:"column:buy_price"`
	MSRP               *float64   `gorm:"column:msrp"`
	DWProductLineID    *int64     `gorm:"column:dw_product_line_id"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (Product) TableName() string { return "dw_products" }

type Order struct {
	DWOrderID          int64      `gorm:"column:dw_order_id;primaryKey;autoIncrement"`
	OrderNumber        int64      `gorm:"column:order_number;uniqueIndex"`
	OrderDate          *time.Time `gorm:"column:order_date"`
	RequiredDate       *time.Time `gorm:"column:required_date"`
	CancelledDate      *time.Time `gorm:"column:cancelled_date"`
	ShippedDate        *time.Time `gorm:"column:shipped_date"`
	Status             *string    `gorm:"column:status"`
	CustomerNumber     int64      `gorm:"column:customer_number"`
	DWCustomerID       *int64     `gorm:"column:dw_customer_id"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (Order) TableName() string { return "dw_orders" }

type OrderDetail struct {
	DWOrderDetailID    int64      `gorm:"column:dw_order_detail_id;primaryKey;autoIncrement"`
	OrderNumber        int64      `gorm:"column:order_number;uniqueIndex:idx_dw_order_details_key"`
	ProductCode        string     `gorm:"column:product_code;uniqueIndex:idx_dw_order_details_key"`
	QuantityOrdered    *int64     `gorm:"column:quantity_ordered"`
	PriceEach          *float64   `gorm:"column:price_each"`
	OrderLineNumber    *int64     `gorm:"column:order_line_number"`
	DWOrderID          *int64     `gorm:"column:dw_order_id"`
	DWProductID        *int64     `gorm:"column:dw_product_id"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (OrderDetail) TableName() string { return "dw_order_details" }

type Payment struct {
	DWPaymentID        int64      `gorm:"column:dw_payment_id;primaryKey;autoIncrement"`
	CustomerNumber     int64      `gorm:"column:customer_number;uniqueIndex:idx_dw_payments_key"`
	CheckNumber        string     `gorm:"column:check_number;uniqueIndex:idx_dw_payments_key"`
	PaymentDate        *time.Time `gorm:"column:payment_date"`
	Amount             *float64   `gorm:"column:amount"`
	DWCustomerID       *int64     `gorm:"column:dw_customer_id"`
	SrcCreateTimestamp *time.Time `gorm:"column:src_create_timestamp"`
	SrcUpdateTimestamp *time.Time `gorm:"column:src_update_timestamp"`
	DWCreateTimestamp  *time.Time `gorm:"column:dw_create_timestamp"`
	DWUpdateTimestamp  *time.Time `gorm:"column:dw_update_timestamp"`
	EtlBatchNo         int64      `gorm:"column:etl_batch_no"`
	EtlBatchDate       *time.Time `gorm:"column:etl_batch_date"`
}

func (Payment) TableName() string { return "dw_payments" }

// Models lists every warehouse model for migration helpers and tests.
func Models() []any {
	return []any{
		&Office{}, &Employee{}, &Customer{}, &ProductLine{},
		&Product{}, &Order{}, &OrderDetail{}, &Payment{},
	}
}
