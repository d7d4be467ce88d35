package mocks

//go:generate mockgen -destination=./mock_exchange.go -package=mocks trailingbot/internal/exchange Client
//go:generate mockgen -destination=./mock_notifier.go -package=mocks trailingbot/internal/errhandler Notifier
