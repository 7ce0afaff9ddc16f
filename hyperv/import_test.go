package hyperv_test

import (
	"path/filepath"
	"time"

	"github.com/hoveland/labops/hyperv"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

type fakeShell struct {
	scripts *[]string

	runErr      error
	outputs     []string
	outputErr   error
	outputCalls int
}

func (f *fakeShell) Run(script string) error {
	*f.scripts = append(*f.scripts, script)
	return f.runErr
}

func (f *fakeShell) Output(script string) (string, error) {
	*f.scripts = append(*f.scripts, "(query) "+script)
	if f.outputErr != nil {
		return "", f.outputErr
	}
	index := f.outputCalls
	f.outputCalls++
	if index >= len(f.outputs) {
		index = len(f.outputs) - 1
	}
	return f.outputs[index], nil
}

var _ = Describe("Importer", func() {
	var dir string
	var scripts []string
	var shell *fakeShell
	var logger boshlog.Logger

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeExport(dir, "vm.vmcx")
		scripts = nil
		shell = &fakeShell{scripts: &scripts, outputs: []string{"192.168.1.77 fe80::215:5dff:fe01:2"}}
		logger = boshlog.NewWriterLogger(boshlog.LevelDebug, GinkgoWriter)
	})

	importer := func(dryRun bool) hyperv.Importer {
		return hyperv.NewImporter(shell, dryRun, logger).WithPollPolicy(3, time.Millisecond)
	}

	options := func() hyperv.Options {
		return hyperv.Options{
			Dir:        dir,
			Name:       "pihole",
			StaticMac:  "00:15:5d:01:02:03",
			SwitchName: "LabSwitch",
			Start:      true,
		}
	}

	It("imports, configures the adapter, starts the VM and reports its address", func() {
		ip, err := importer(false).Import(options())

		Expect(err).NotTo(HaveOccurred())
		Expect(ip).To(Equal("192.168.1.77"))
		vmcx := filepath.Join(dir, "Virtual Machines", "vm.vmcx")
		Expect(scripts).To(Equal([]string{
			"Import-VM -Path '" + vmcx + "' -Copy -GenerateNewId | Out-Null",
			"Set-VMNetworkAdapter -VMName 'pihole' -StaticMacAddress '00155D010203'",
			"Connect-VMNetworkAdapter -VMName 'pihole' -SwitchName 'LabSwitch'",
			"Start-VM -Name 'pihole'",
			"(query) (Get-VMNetworkAdapter -VMName 'pihole').IPAddresses",
		}))
	})

	It("skips the adapter steps when nothing was asked for", func() {
		opts := options()
		opts.StaticMac = ""
		opts.SwitchName = ""
		opts.Start = false

		ip, err := importer(false).Import(opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(ip).To(BeEmpty())
		Expect(scripts).To(HaveLen(1))
		Expect(scripts[0]).To(HavePrefix("Import-VM"))
	})

	It("requires a VM name", func() {
		opts := options()
		opts.Name = ""

		_, err := importer(false).Import(opts)

		Expect(err).To(MatchError(ContainSubstring("VM name is required")))
		Expect(scripts).To(BeEmpty())
	})

	It("rejects a malformed MAC address before shelling out", func() {
		opts := options()
		opts.StaticMac = "00:15:5d:zz:02:03"

		_, err := importer(false).Import(opts)

		Expect(err).To(MatchError(ContainSubstring("invalid MAC address")))
		Expect(scripts).To(BeEmpty())
	})

	It("fails when a cmdlet fails", func() {
		shell.runErr = errors.New("access denied")

		_, err := importer(false).Import(options())

		Expect(err).To(MatchError(ContainSubstring("failed to import VM")))
	})

	It("rejects a broken export layout before shelling out", func() {
		opts := options()
		opts.Dir = GinkgoT().TempDir()

		_, err := importer(false).Import(opts)

		Expect(err).To(HaveOccurred())
		Expect(scripts).To(BeEmpty())
	})

	It("keeps polling until the guest reports an IPv4 address", func() {
		shell.outputs = []string{"", "fe80::215:5dff:fe01:2", "fe80::215:5dff:fe01:2 192.168.1.77"}

		ip, err := importer(false).Import(options())

		Expect(err).NotTo(HaveOccurred())
		Expect(ip).To(Equal("192.168.1.77"))
	})

	It("gives up when the guest never reports an address", func() {
		shell.outputs = []string{""}

		_, err := importer(false).Import(options())

		Expect(err).To(MatchError(ContainSubstring("did not report an IPv4 address")))
	})

	It("does not wait for an address in dry-run mode", func() {
		ip, err := importer(true).Import(options())

		Expect(err).NotTo(HaveOccurred())
		Expect(ip).To(BeEmpty())
		Expect(scripts).NotTo(ContainElement(HavePrefix("(query)")))
	})
})
