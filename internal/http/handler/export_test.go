package handler

var (
	StatusFor          = statusFor
	HandleServiceError = handleServiceError
)
