package executor_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

var _ = Describe("Batch execution", func() {
	var (
		ctx    context.Context
		order  []string
		toasts []string
		ex     *executor.Executor
	)

	BeforeEach(func() {
		ctx = context.Background()
		order = nil
		toasts = nil
		ex = executor.New(executor.Capabilities{
			SetMode: func(ctx context.Context, mode string) error {
				order = append(order, "mode:"+mode)
				return nil
			},
			SetStep: func(ctx context.Context, step int) error {
				order = append(order, "step")
				if step == 13 {
					return errors.New("step 13 is reserved")
				}
				return nil
			},
			SetFieldValue: func(ctx context.Context, field, value string) error {
				order = append(order, "field:"+field)
				return nil
			},
			ShowToast: func(ctx context.Context, message string) {
				toasts = append(toasts, message)
			},
		})
	})

	Describe("ordering", func() {
		It("invokes capabilities in submission order", func() {
			report := ex.ExecuteFromJSON(ctx, `[
				{"type":"setFieldValue","field":"subject","value":"a lighthouse"},
				{"type":"setMode","value":"photography"},
				{"type":"setStep","value":4},
				{"type":"setFieldValue","field":"lighting","value":"golden hour"}
			]`, executor.Options{})

			Expect(order).To(Equal([]string{"field:subject", "mode:photography", "step", "field:lighting"}))
			Expect(report.Results).To(HaveLen(4))
			var kinds []action.Type
			for _, cmd := range report.Commands() {
				kinds = append(kinds, cmd.Type())
			}
			Expect(kinds).To(Equal([]action.Type{
				action.TypeSetFieldValue, action.TypeSetMode, action.TypeSetStep, action.TypeSetFieldValue,
			}))
		})
	})

	Describe("partial failure", func() {
		var report *types.ExecutionReport

		BeforeEach(func() {
			report = ex.ExecuteFromJSON(ctx, `[
				{"type":"setStep","value":13},
				{"type":"setStep","value":40},
				{"type":"setMode","value":"drone"}
			]`, executor.Options{})
		})

		It("keeps running after a failure", func() {
			Expect(report.TotalCommands).To(Equal(3))
			Expect(report.SuccessCount).To(Equal(1))
			Expect(report.FailureCount).To(Equal(2))
			Expect(report.Results[2].Success).To(BeTrue())
		})

		It("does not call the capability for semantically invalid commands", func() {
			Expect(order).To(Equal([]string{"step", "mode:drone"}))
		})

		It("shows one toast per failed command", func() {
			Expect(toasts).To(HaveLen(2))
			Expect(toasts[0]).To(ContainSubstring("step 13 is reserved"))
			Expect(toasts[1]).To(ContainSubstring("between 1 and 22"))
		})

		It("reports failures in order", func() {
			failures := report.Failures()
			Expect(failures).To(HaveLen(2))
			Expect(failures[0].Message).To(Equal("Command failed"))
			Expect(failures[1].Message).To(Equal("Invalid setStep command"))
		})
	})

	Describe("notification gating", func() {
		DescribeTable("toasts",
			func(opts executor.Options, expected int) {
				ex.ExecuteFromJSON(ctx, `[{"type":"setStep","value":0},{"type":"nope"}]`, opts)
				Expect(toasts).To(HaveLen(expected))
			},
			Entry("default shows parse and command errors", executor.Options{}, 2),
			Entry("skipErrors hides both", executor.Options{SkipErrors: true}, 0),
			Entry("silent hides both", executor.Options{Silent: true}, 0),
		)
	})
})
