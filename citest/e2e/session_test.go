package e2e_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/citest/testutil"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/storage"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

var _ = Describe("Session persistence across restarts", func() {
	for _, driver := range []string{storage.DriverFile, storage.DriverSQLite} {
		driver := driver

		Context("with the "+driver+" store", func() {
			var dataDir string
			var cfg *types.Config

			BeforeEach(func() {
				dataDir = GinkgoT().TempDir()
				cfg = &types.Config{Storage: &types.StorageConfig{Driver: driver}}
			})

			start := func(session string) *testutil.TestServer {
				ts, err := testutil.StartTestServer(
					testutil.WithDataDir(dataDir),
					testutil.WithSession(session),
					testutil.WithConfig(cfg),
				)
				Expect(err).NotTo(HaveOccurred())
				return ts
			}

			It("restores history, cursor and UI state", func() {
				first := start("studio")
				client := first.Client()

				_, err := client.RunCommands(ctx, `[{"type":"setMode","value":"photography"},{"type":"setStep","value":15}]`)
				Expect(err).NotTo(HaveOccurred())
				_, err = client.RunCommands(ctx, `{"type":"setFieldValue","field":"lens","value":"85mm"}`)
				Expect(err).NotTo(HaveOccurred())
				Expect(client.Move(ctx, "/history/undo")).To(BeTrue())
				Expect(first.Stop()).To(Succeed())

				second := start("studio")
				defer second.Stop()
				client = second.Client()

				snap, err := client.History(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Entries).To(HaveLen(2))
				Expect(snap.CurrentIndex).To(Equal(0))
				Expect(snap.CanRedo).To(BeTrue())

				state, err := client.State(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(state.Mode).To(Equal("photography"))
				Expect(state.Step).To(Equal(15))
				Expect(state.Fields).To(HaveKeyWithValue("lens", "85mm"))
			})

			It("keeps sessions apart", func() {
				first := start("one")
				_, err := first.Client().RunCommands(ctx, `{"type":"openSettings"}`)
				Expect(err).NotTo(HaveOccurred())
				Expect(first.Stop()).To(Succeed())

				other := start("two")
				defer other.Stop()

				snap, err := other.Client().History(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Entries).To(BeEmpty())

				state, err := other.Client().State(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(*state).To(Equal(types.DefaultUIState()))
			})

			It("forgets a cleared history", func() {
				first := start("scratch")
				client := first.Client()
				_, err := client.RunCommands(ctx, `{"type":"togglePreview"}`)
				Expect(err).NotTo(HaveOccurred())
				Expect(client.ClearHistory(ctx)).To(Succeed())
				Expect(first.Stop()).To(Succeed())

				second := start("scratch")
				defer second.Stop()

				snap, err := second.Client().History(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Entries).To(BeEmpty())
				Expect(snap.CurrentIndex).To(Equal(-1))
			})
		})
	}
})
