package heirs

// Wire shapes for the Heirs Assurance API. Fields the adapter ignores are
// left out; the decoder drops them.

type subProductList struct {
	Data []subProduct `json:"data"`
}

type subProduct struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

type productInfoResponse struct {
	Data productInfo `json:"data"`
}

type productInfo struct {
	ProductID   string   `json:"productId"`
	Description string   `json:"description"`
	PolicyTerms string   `json:"policyTerms"`
	Benefits    []string `json:"benefits"`
}

type quoteRequestBody struct {
	ProductID    string `json:"productId"`
	ProductClass string `json:"productClass"`
}

type quoteResponse struct {
	Data struct {
		ProductID    string `json:"productId"`
		Premium      string `json:"premium"`
		Contribution string `json:"contribution"`
		Currency     string `json:"currency"`
	} `json:"data"`
}
