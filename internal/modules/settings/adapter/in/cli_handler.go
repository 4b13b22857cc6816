package in

import (
	"context"

	settingsin "toolhub/internal/modules/settings/port/in"
	"toolhub/internal/platform/config"
)

type CLIHandler struct {
	usecase settingsin.Usecase
}

func NewCLIHandler(usecase settingsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Get(ctx context.Context, key string) (string, error) {
	return h.usecase.GetString(ctx, key, "")
}

func (h CLIHandler) Set(ctx context.Context, key, value string) error {
	return h.usecase.PutString(ctx, key, value)
}

func (h CLIHandler) Delete(ctx context.Context, key string) error {
	return h.usecase.Delete(ctx, key)
}

func (h CLIHandler) DataEndpoint(ctx context.Context) (config.Endpoint, error) {
	return h.usecase.DataEndpoint(ctx)
}

func (h CLIHandler) SetDataEndpoint(ctx context.Context, host string, port int) error {
	return h.usecase.SetDataEndpoint(ctx, config.Endpoint{Host: host, Port: port})
}
