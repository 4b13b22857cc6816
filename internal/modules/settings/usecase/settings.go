package usecase

import (
	settingsin "toolhub/internal/modules/settings/port/in"
	"toolhub/internal/modules/settings/service"
)

// The service already exposes exactly the typed accessor surface the
// inbound port defines, so the interactor is the service itself.
func NewInteractor(svc *service.SettingsService) settingsin.Usecase {
	return svc
}
