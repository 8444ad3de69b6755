package behavior

import (
	"time"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/fragment"
	"github.com/SergeiGolos/wod-wiki-runtime/internal/memory"
)

// fakeHost is a minimal, test-only behavior.Host that never imports block,
// letting behavior's own tests exercise Mount/Next/Unmount hooks directly.
type fakeHost struct {
	key         memory.Key
	label       string
	parentKey   memory.Key
	hasParent   bool
	parentSpan  string
	ctx         *memory.Context
	fragments   []fragment.Fragment
	metrics     fragment.RuntimeMetric
	childGroups int
	now         time.Time
}

func newFakeHost(store *memory.Store, key memory.Key, childGroups int) *fakeHost {
	return &fakeHost{
		key:         key,
		ctx:         memory.NewContext(store, key),
		childGroups: childGroups,
		now:         time.Unix(0, 0),
	}
}

func (h *fakeHost) Key() memory.Key { return h.key }
func (h *fakeHost) Label() string   { return h.label }
func (h *fakeHost) ParentKey() (memory.Key, bool) {
	return h.parentKey, h.hasParent
}
func (h *fakeHost) ParentSpanID() (string, bool)            { return h.parentSpan, h.parentSpan != "" }
func (h *fakeHost) MemoryContext() *memory.Context          { return h.ctx }
func (h *fakeHost) Fragments() []fragment.Fragment          { return h.fragments }
func (h *fakeHost) CompiledMetrics() fragment.RuntimeMetric { return h.metrics }
func (h *fakeHost) ChildGroupCount() int                    { return h.childGroups }
func (h *fakeHost) Now() time.Time                          { return h.now }

func (h *fakeHost) advanceNow(d time.Duration) { h.now = h.now.Add(d) }
