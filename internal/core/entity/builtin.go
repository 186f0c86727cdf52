package entity

// order is the tab order of the console.
var order = []Kind{Customers, Products, Prices, Invoices, Salespeople, Drivers, Warehouses}

func init() {
	register(Schema{
		Kind:  Customers,
		Title: "Customers",
		Columns: []Column{
			{Field: "name", Title: "Name", Type: TypeString, Required: true, Width: 24},
			{Field: "email", Title: "Email", Type: TypeEmail, Width: 26},
			{Field: "phone", Title: "Phone", Type: TypeString, Width: 14},
			{Field: "city", Title: "City", Type: TypeString, Width: 14},
			{Field: "credit_limit", Title: "Credit", Type: TypeMoney, Min: floatPtr(0), Width: 10},
		},
		UniqueBy: "name",
	})

	register(Schema{
		Kind:  Products,
		Title: "Products",
		Columns: []Column{
			{Field: "sku", Title: "SKU", Type: TypeString, Required: true, Width: 10},
			{Field: "name", Title: "Name", Type: TypeString, Required: true, Width: 24},
			{Field: "unit", Title: "Unit", Type: TypeString, Width: 6},
			{Field: "price", Title: "Price", Type: TypeMoney, Required: true, Min: floatPtr(0), Width: 10},
			{Field: "active", Title: "Active", Type: TypeBool, Width: 6},
		},
	})

	register(Schema{
		Kind:  Prices,
		Title: "Pricing",
		Columns: []Column{
			{Field: "product_id", Title: "Product", Type: TypeInt, Required: true, Min: floatPtr(1), Width: 8},
			{Field: "customer_id", Title: "Customer", Type: TypeInt, Required: true, Min: floatPtr(1), Width: 8},
			{Field: "price", Title: "Price", Type: TypeMoney, Required: true, Min: floatPtr(0), Width: 10},
		},
		KeyFields: []string{"product_id", "customer_id"},
	})

	register(Schema{
		Kind:  Invoices,
		Title: "Invoices",
		Columns: []Column{
			{Field: "number", Title: "Number", Type: TypeString, Required: true, Width: 10},
			{Field: "customer_id", Title: "Customer", Type: TypeInt, Required: true, Min: floatPtr(1), Width: 8},
			{Field: "salesperson_id", Title: "Sales", Type: TypeInt, Min: floatPtr(1), Width: 6},
			{Field: "issued_on", Title: "Issued", Type: TypeDate, Required: true, Width: 10},
			{Field: "total", Title: "Total", Type: TypeMoney, Min: floatPtr(0), Width: 10},
			{Field: "paid", Title: "Paid", Type: TypeBool, Width: 5},
		},
		Dialog: true,
	})

	register(Schema{
		Kind:  Salespeople,
		Title: "Salespeople",
		Columns: []Column{
			{Field: "name", Title: "Name", Type: TypeString, Required: true, Width: 22},
			{Field: "email", Title: "Email", Type: TypeEmail, Width: 26},
			{Field: "region", Title: "Region", Type: TypeString, Width: 12},
			{Field: "commission", Title: "Comm %", Type: TypeMoney, Min: floatPtr(0), Width: 7},
		},
	})

	register(Schema{
		Kind:  Drivers,
		Title: "Drivers",
		Columns: []Column{
			{Field: "name", Title: "Name", Type: TypeString, Required: true, Width: 22},
			{Field: "license", Title: "License", Type: TypeString, Required: true, Width: 12},
			{Field: "phone", Title: "Phone", Type: TypeString, Width: 14},
			{Field: "warehouse_id", Title: "Warehouse", Type: TypeInt, Min: floatPtr(1), Width: 9},
		},
	})

	register(Schema{
		Kind:  Warehouses,
		Title: "Warehouses",
		Columns: []Column{
			{Field: "code", Title: "Code", Type: TypeString, Required: true, Width: 8},
			{Field: "name", Title: "Name", Type: TypeString, Required: true, Width: 22},
			{Field: "city", Title: "City", Type: TypeString, Width: 14},
			{Field: "capacity", Title: "Capacity", Type: TypeInt, Min: floatPtr(0), Width: 9},
		},
	})
}
