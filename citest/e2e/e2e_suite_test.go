package e2e_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

var ctx context.Context

func TestE2E(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "E2E Suite")
}

var _ = BeforeSuite(func() {
	logging.SetLevel(logging.Disabled)
	ctx = context.Background()
})
