package observer_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/transport/observer"
)

func snapshot(t float64) dynamo.Snapshot {
	return dynamo.Snapshot{
		Time: t,
		Objects: []dynamo.ObjectState{{
			Kind:     dynamo.KindRobot,
			Polygons: [][]dynamo.Point2{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
		}},
	}
}

func readSnapshot(conn *websocket.Conn) dynamo.Snapshot {
	GinkgoHelper()
	Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
	kind, b, err := conn.ReadMessage()
	Expect(err).NotTo(HaveOccurred())
	Expect(kind).To(Equal(websocket.TextMessage))
	var s dynamo.Snapshot
	Expect(json.Unmarshal(b, &s)).To(Succeed())
	return s
}

var _ = Describe("Hub", func() {
	var (
		hub *observer.Hub
		srv *httptest.Server
	)

	dial := func() *websocket.Conn {
		GinkgoHelper()
		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = conn.Close() })
		return conn
	}

	JustBeforeEach(func() {
		srv = httptest.NewServer(hub.Handler())
		DeferCleanup(srv.Close)
		DeferCleanup(hub.Close)
	})

	Context("sending every snapshot", func() {
		BeforeEach(func() {
			hub = observer.NewHub(1, nil)
		})

		It("does nothing without clients", func() {
			hub.OnSnapshot(snapshot(0.1))
			Expect(hub.Clients()).To(BeZero())
		})

		It("delivers snapshots to every client", func() {
			a, b := dial(), dial()
			Eventually(hub.Clients).Should(Equal(2))

			hub.OnSnapshot(snapshot(0.5))

			for _, conn := range []*websocket.Conn{a, b} {
				s := readSnapshot(conn)
				Expect(s.Time).To(Equal(0.5))
				Expect(s.Objects).To(HaveLen(1))
				Expect(s.Objects[0].Kind).To(Equal(dynamo.KindRobot))
				Expect(s.Objects[0].Polygons[0]).To(HaveLen(3))
			}
		})

		It("unblocks WaitForClient on the first connection", func() {
			done := make(chan error, 1)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				done <- hub.WaitForClient(ctx)
			}()
			dial()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("forgets clients that disconnect", func() {
			conn := dial()
			Eventually(hub.Clients).Should(Equal(1))
			Expect(conn.Close()).To(Succeed())
			Eventually(hub.Clients).Should(BeZero())
		})

		It("closes clients when the hub closes", func() {
			conn := dial()
			Eventually(hub.Clients).Should(Equal(1))

			hub.Close()

			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			_, _, err := conn.ReadMessage()
			Expect(websocket.IsCloseError(err, websocket.CloseNormalClosure)).To(BeTrue())
			Expect(hub.Clients()).To(BeZero())
		})
	})

	Context("sending every third snapshot", func() {
		BeforeEach(func() {
			hub = observer.NewHub(3, nil)
		})

		It("skips the frames in between", func() {
			conn := dial()
			Eventually(hub.Clients).Should(Equal(1))

			for i := 0; i < 7; i++ {
				hub.OnSnapshot(snapshot(float64(i)))
			}

			Expect(readSnapshot(conn).Time).To(Equal(0.0))
			Expect(readSnapshot(conn).Time).To(Equal(3.0))
			Expect(readSnapshot(conn).Time).To(Equal(6.0))
		})
	})

	Context("with nobody connected", func() {
		BeforeEach(func() {
			hub = observer.NewHub(1, nil)
		})

		It("times out waiting", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			Expect(hub.WaitForClient(ctx)).To(MatchError(context.DeadlineExceeded))
		})
	})
})
