package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/domtree"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/internal/slots"
	"github.com/arloliu/shadowslot/types"
)

// recordingMetrics captures the notification metrics dispatchers report.
type recordingMetrics struct {
	*metrics.NopMetrics

	mu         sync.Mutex
	dispatches map[string][]bool
	dropped    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{NopMetrics: metrics.NewNop(), dispatches: make(map[string][]bool)}
}

func (m *recordingMetrics) RecordDispatch(transport string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches[transport] = append(m.dispatches[transport], success)
}

func (m *recordingMetrics) RecordDroppedNotification() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *recordingMetrics) outcomes(transport string) []bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]bool(nil), m.dispatches[transport]...)
}

func (m *recordingMetrics) droppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dropped
}

// cardTree builds a host with a shadow root holding a "title" and a default
// slot, wired to a slot engine, and returns a drained batch after two host
// children were appended.
func cardTree(t *testing.T) (*domtree.Document, *domtree.Node, *slots.Engine, []types.Notification) {
	t.Helper()

	doc := domtree.NewDocument()
	host := doc.CreateElement("x-card")
	require.NoError(t, doc.Body().AppendChild(host))
	root, err := doc.AttachShadow(host)
	require.NoError(t, err)

	engine, err := slots.New(&slots.Config{Tree: root})
	require.NoError(t, err)
	root.SetDistributor(engine)

	require.NoError(t, root.AppendChild(doc.CreateSlot("title")))
	require.NoError(t, root.AppendChild(doc.CreateSlot("")))

	h := doc.CreateElement("h2")
	h.SetAttribute(domtree.SlotAttr, "title")
	require.NoError(t, host.AppendChild(h))
	require.NoError(t, host.AppendChild(doc.CreateText("body")))

	batch := engine.DrainNotifications()
	require.Len(t, batch, 2)

	return doc, host, engine, batch
}
