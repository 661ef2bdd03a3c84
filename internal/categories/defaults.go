package categories

// DefaultMappings returns the built-in bank label to budget category table.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Label: "Food and Drink", Category: "Food & Dining"},
		{Label: "Groceries", Category: "Groceries"},
		{Label: "Health", Category: "Healthcare"},
		{Label: "Shopping", Category: "Shopping"},
		{Label: "Bills and Utilities", Category: "Bills & Utilities"},
		{Label: "Transportation", Category: "Transportation"},
		{Label: "Travel", Category: "Travel"},
		{Label: "Rent", Category: "Housing"},
		{Label: "Entertainment", Category: "Entertainment"},
		{Label: "Transfer", Category: "Transfer"},
		{Label: "Payment", Category: "Payment"},
		{Label: "Other", Category: "Miscellaneous"},
	}
}
