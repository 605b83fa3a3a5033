// Package privacy holds helpers for keeping PII out of logs.
package privacy

// RedactCustomerID masks a customer identifier for log output, keeping a
// short prefix so operators can still correlate entries.
func RedactCustomerID(customerID string) string {
	if len(customerID) <= 4 {
		return "***"
	}
	return customerID[:4] + "***"
}
