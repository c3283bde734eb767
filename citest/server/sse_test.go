package server_test

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/citest/testutil"
)

var _ = Describe("SSE Event Streaming", func() {
	var sseClient *testutil.SSEClient

	BeforeEach(func() {
		sseClient = testServer.SSEClient()
		Expect(sseClient.Connect(ctx, "/event")).To(Succeed())

		connected, err := sseClient.WaitForEvent("server.connected", 5*time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(connected.Property("session").String()).To(Equal("citest"))
	})

	AfterEach(func() {
		sseClient.Close()
	})

	Describe("GET /event", func() {
		It("should set streaming headers", func() {
			req, err := http.NewRequest("GET", testServer.BaseURL+"/event", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Accept", "text/event-stream")

			reqCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			resp, err := http.DefaultClient.Do(req.WithContext(reqCtx))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))
			Expect(resp.Header.Get("Cache-Control")).To(Equal("no-cache"))
		})

		It("should stream state, report and history events for a batch", func() {
			_, err := client.RunCommands(ctx, `{"type":"setStep","value":12}`)
			Expect(err).NotTo(HaveOccurred())

			state, err := sseClient.WaitFor(5*time.Second, testutil.OfType("state.changed"))
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Property("commandType").String()).To(Equal("setStep"))
			Expect(state.Property("state.step").Int()).To(Equal(int64(12)))

			report, err := sseClient.WaitFor(5*time.Second, testutil.OfType("report.created"))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Property("report.successCount").Int()).To(Equal(int64(1)))

			_, err = sseClient.WaitFor(5*time.Second, func(evt testutil.SSEEvent) bool {
				return evt.Type == "history.changed" && evt.Property("size").Int() == 1 && evt.Property("canUndo").Bool()
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should stream failures and the toast raised for them", func() {
			_, err := client.RunCommands(ctx, `{"type":"setEditorTone","value":"gloomy"}`)
			Expect(err).NotTo(HaveOccurred())

			failed, err := sseClient.WaitFor(5*time.Second, testutil.OfType("command.failed"))
			Expect(err).NotTo(HaveOccurred())
			var data struct {
				Index       int    `json:"index"`
				CommandType string `json:"commandType"`
				Error       string `json:"error"`
			}
			Expect(failed.Properties(&data)).To(Succeed())
			Expect(data.Index).To(Equal(0))
			Expect(data.CommandType).To(Equal("setEditorTone"))
			Expect(data.Error).To(HavePrefix("Must be one of: melancholic"))

			toast, err := sseClient.WaitFor(5*time.Second, testutil.OfType("toast.shown"))
			Expect(err).NotTo(HaveOccurred())
			Expect(toast.Property("message").String()).To(HavePrefix("Invalid setEditorTone command: "))
		})

		It("should stream cursor moves", func() {
			_, err := client.RunCommands(ctx, `{"type":"openSettings"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Move(ctx, "/history/undo")).To(BeTrue())

			_, err = sseClient.WaitFor(5*time.Second, func(evt testutil.SSEEvent) bool {
				return evt.Type == "history.changed" && evt.Property("currentIndex").Int() == -1 && evt.Property("canRedo").Bool()
			})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
