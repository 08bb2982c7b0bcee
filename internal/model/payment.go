// internal/model/payment.go
package model

// CheckoutResponse は決済セッション作成のレスポンス
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ContentResponse は上流CMSから抽出した埋め込み用フラグメント
type ContentResponse struct {
	PostURL string `json:"post_url"`
	Title   string `json:"title"`
	HTML    string `json:"html"`
}
