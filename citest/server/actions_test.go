package server_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/citest/testutil"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

var _ = Describe("Action Endpoints", func() {
	Describe("POST /actions", func() {
		It("executes a batch and records it", func() {
			report, err := client.RunCommands(ctx, `[
				{"type":"setMode","value":"animation"},
				{"type":"bulkSetValues","entries":{"subject":"a paper crane","lighting":"soft window light"}},
				{"type":"setStep","value":6}
			]`)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommands).To(Equal(3))
			Expect(report.SuccessCount).To(Equal(3))
			Expect(report.Results[1].Message).To(Equal("Set 2 fields"))
			Expect(report.Results[2].Message).To(Equal("Set step to 6"))

			state, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Mode).To(Equal("animation"))
			Expect(state.Step).To(Equal(6))
			Expect(state.Fields).To(HaveKeyWithValue("subject", "a paper crane"))

			snap, err := client.History(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Entries).To(HaveLen(1))
			Expect(snap.CurrentIndex).To(Equal(0))
		})

		It("accepts a single command object", func() {
			report, err := client.RunCommands(ctx, `{"type":"setEditorTone","value":"dramatic"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SuccessCount).To(Equal(1))
			Expect(report.Results[0].Command.Type()).To(Equal(action.TypeSetEditorTone))
		})

		It("treats markdown-fenced text as a parse error", func() {
			report, err := client.RunCommands(ctx, "```json\n{\"type\":\"openSettings\"}\n```")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommands).To(Equal(0))
			Expect(report.ParseErrors).To(ConsistOf(HavePrefix("Parse error: ")))
		})

		It("reports invalid elements and runs the rest", func() {
			report, err := client.RunCommands(ctx, `[{"type":"openSettings"},{"type":"setStep"},{"type":"fly"}]`)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommands).To(Equal(1))
			Expect(report.ParseErrors).To(HaveLen(2))
			Expect(report.ParseErrors[0]).To(HavePrefix("Command 1: Invalid structure or missing required fields"))
		})

		It("does not record a payload without commands", func() {
			report, err := client.RunCommands(ctx, `not json at all`)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommands).To(Equal(0))
			Expect(report.ParseErrors).To(ConsistOf(HavePrefix("Parse error: ")))

			snap, err := client.History(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Entries).To(BeEmpty())
		})

		It("runs past failures and only toasts when errors are not skipped", func() {
			payload := `[{"type":"setMode","value":"vaporwave"},{"type":"setStep","value":2}]`
			before, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())

			report, err := client.RunCommands(ctx, payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCommands).To(Equal(2))
			Expect(report.FailureCount).To(Equal(1))
			Expect(report.Results[0].Message).To(Equal("Command failed"))
			Expect(report.Results[1].Success).To(BeTrue())

			after, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Toasts).To(HaveLen(len(before.Toasts) + 1))
			Expect(after.Toasts[len(after.Toasts)-1].Message).To(HavePrefix("Command failed: unknown mode"))

			report, err = client.RunCommands(ctx, payload, testutil.WithQuery(map[string]string{"skipErrors": "true"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.FailureCount).To(Equal(1))

			last, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(last.Toasts).To(HaveLen(len(after.Toasts)))
		})

		It("rejects unknown fields when the host restricts them", func() {
			report, err := client.RunCommands(ctx, `{"type":"setFieldValue","field":"budget","value":"none"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.FailureCount).To(Equal(1))
			Expect(report.Results[0].Error).To(ContainSubstring("budget"))
		})

		It("rejects a malformed option", func() {
			resp, err := client.Post(ctx, "/actions?silent=maybe", `{"type":"openSettings"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(resp.ErrorCode()).To(Equal("INVALID_REQUEST"))
		})
	})

	Describe("POST /actions/validate", func() {
		It("parses without executing", func() {
			before, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())

			resp, err := client.Post(ctx, "/actions/validate", `{"type":"setStep","value":21}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result struct {
				Valid  bool     `json:"valid"`
				Errors []string `json:"errors"`
			}
			Expect(resp.JSON(&result)).To(Succeed())
			Expect(result.Valid).To(BeTrue())

			after, err := client.State(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Step).To(Equal(before.Step))
		})
	})

	Describe("GET /actions/schema", func() {
		It("lists every command type", func() {
			resp, err := client.Get(ctx, "/actions/schema")
			Expect(err).NotTo(HaveOccurred())

			var schema struct {
				Commands []action.Spec `json:"commands"`
				Modes    []string      `json:"modes"`
			}
			Expect(resp.JSON(&schema)).To(Succeed())
			Expect(schema.Commands).To(HaveLen(len(action.Types())))
			Expect(schema.Modes).To(ContainElement("photography"))
		})
	})

	Describe("GET /stats and /reports", func() {
		It("aggregates executed reports", func() {
			_, err := client.RunCommands(ctx, `[{"type":"togglePreview"},{"type":"togglePreview"}]`)
			Expect(err).NotTo(HaveOccurred())
			_, err = client.RunCommands(ctx, `{"type":"setStep","value":0}`)
			Expect(err).NotTo(HaveOccurred())

			resp, err := client.Get(ctx, "/stats")
			Expect(err).NotTo(HaveOccurred())
			var stats types.Stats
			Expect(resp.JSON(&stats)).To(Succeed())
			Expect(stats).To(Equal(types.Stats{
				TotalReports:  2,
				TotalCommands: 3,
				TotalSuccess:  2,
				TotalFailures: 1,
				SuccessRate:   stats.SuccessRate,
			}))
			Expect(stats.SuccessRate).To(BeNumerically("~", 66.67, 0.01))

			resp, err = client.Get(ctx, "/reports")
			Expect(err).NotTo(HaveOccurred())
			var reports []types.ExecutionReport
			Expect(resp.JSON(&reports)).To(Succeed())
			Expect(reports).To(HaveLen(2))
		})
	})
})

var _ = Describe("History Endpoints", func() {
	BeforeEach(func() {
		for _, step := range []string{"2", "3", "4"} {
			_, err := client.RunCommands(ctx, `{"type":"setStep","value":`+step+`}`)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("moves the cursor with undo and redo", func() {
		Expect(client.Move(ctx, "/history/undo")).To(BeTrue())
		Expect(client.Move(ctx, "/history/undo")).To(BeTrue())
		Expect(client.Move(ctx, "/history/undo")).To(BeTrue())
		Expect(client.Move(ctx, "/history/undo")).To(BeFalse())
		Expect(client.Move(ctx, "/history/redo")).To(BeTrue())

		snap, err := client.History(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.CurrentIndex).To(Equal(0))
		Expect(snap.CanUndo).To(BeTrue())
		Expect(snap.CanRedo).To(BeTrue())
	})

	It("drops the redo branch when a new batch is recorded", func() {
		Expect(client.Move(ctx, "/history/goto/0")).To(BeTrue())
		_, err := client.RunCommands(ctx, `{"type":"openSettings"}`)
		Expect(err).NotTo(HaveOccurred())

		snap, err := client.History(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Entries).To(HaveLen(2))
		Expect(snap.CurrentIndex).To(Equal(1))
		Expect(snap.CanRedo).To(BeFalse())
	})

	It("rejects out of range and malformed indexes", func() {
		resp, err := client.Post(ctx, "/history/goto/3", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		Expect(resp.ErrorCode()).To(Equal("NOT_FOUND"))

		resp, err = client.Post(ctx, "/history/goto/last", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		Expect(client.Move(ctx, "/history/goto/-1")).To(BeTrue())
	})

	It("round-trips export and import", func() {
		resp, err := client.Get(ctx, "/history/export")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Headers.Get("Content-Disposition")).To(ContainSubstring("attachment"))
		exported := resp.String()

		Expect(client.ClearHistory(ctx)).To(Succeed())

		resp, err = client.Post(ctx, "/history/import", exported)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		snap, err := client.History(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Entries).To(HaveLen(3))
		Expect(snap.CurrentIndex).To(Equal(2))
	})

	It("leaves the log untouched when an import is rejected", func() {
		resp, err := client.Post(ctx, "/history/import", `{"entries":[]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		snap, err := client.History(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap.Entries).To(HaveLen(3))
	})
})
