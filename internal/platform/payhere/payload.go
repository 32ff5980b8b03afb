package payhere

// CheckoutPayload is the form the browser posts to the PayHere checkout page.
type CheckoutPayload struct {
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	// Custom1 carries the user id and Custom2 the cart id back on the callback.
	Custom1 string `json:"custom_1"`
	Custom2 string `json:"custom_2"`
	Hash    string `json:"hash"`
}

// Notification is the server-to-server callback posted to notify_url.
// PayHere sends it form-encoded; JSON is accepted for tooling.
type Notification struct {
	MerchantID      string `form:"merchant_id" json:"merchant_id"`
	OrderID         string `form:"order_id" json:"order_id"`
	PaymentID       string `form:"payment_id" json:"payment_id"`
	PayHereAmount   string `form:"payhere_amount" json:"payhere_amount,omitempty"`
	PayHereCurrency string `form:"payhere_currency" json:"payhere_currency,omitempty"`
	StatusCode      string `form:"status_code" json:"status_code"`
	StatusMessage   string `form:"status_message" json:"status_message"`
	Method          string `form:"method" json:"method,omitempty"`
	Custom1         string `form:"custom_1" json:"custom_1,omitempty"`
	Custom2         string `form:"custom_2" json:"custom_2,omitempty"`
	MD5Sig          string `form:"md5sig" json:"md5sig"`
}
