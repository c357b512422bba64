package backend

// Backend routes. Trailing slashes are significant.
const (
	PathProducts     = "/api/products/"
	PathShops        = "/api/shops/"
	PathShop         = "/api/shops/%d/"
	PathShopProducts = "/api/shops/%d/products/"
	PathOTPSend      = "/api/auth/otp/send/"
	PathOTPVerify    = "/api/auth/otp/verify/"
	PathLogin        = "/api/auth/login/"
	PathOrders       = "/api/orders/"
	PathDashboard    = "/api/shop-owner/dashboard/"
)

var transactionPaths = map[TransactionKind]string{
	TransactionWallet:   "/api/wallet/transactions/",
	TransactionTrade:    "/api/trade/transactions/",
	TransactionCurrency: "/api/currency/transactions/",
}
