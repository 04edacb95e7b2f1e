package eventbus

type WritingEventType string

const (
	WritingEventCreated WritingEventType = "WritingCreated"
	WritingEventUpdated WritingEventType = "WritingUpdated"
	WritingEventDeleted WritingEventType = "WritingDeleted"
	WritingEventViewed  WritingEventType = "WritingViewed"
)

type WritingEvent struct {
	Type      WritingEventType
	WritingID uint
	Slug      string
	// PrevSlug 标题修改导致 slug 变化时的旧值
	PrevSlug string
	Views    int64
}

type WritingEventHandler = Handler[WritingEvent]
type WritingEventBus = Bus[WritingEventType, WritingEvent]

func NewWritingEventBus() *WritingEventBus {
	return NewBus[WritingEventType, WritingEvent]()
}
