package eventbus

type SettingEventType string

const (
	SettingEventChanged SettingEventType = "SettingChanged"
)

type SettingEvent struct {
	Type  SettingEventType
	Key   string
	Value string
}

type SettingEventBus = Bus[SettingEventType, SettingEvent]

func NewSettingEventBus() *SettingEventBus {
	return NewBus[SettingEventType, SettingEvent]()
}
