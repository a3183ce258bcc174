package settings_test

import (
	"context"
	"errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/settings"
	"github.com/susom/smartdata-worker/store"
	"go.uber.org/zap"
)

var _ = Describe("FileStore", func() {
	It("returns the enabled projects", func() {
		fileStore := settings.NewFileStore("test/fixtures/projects.json")

		projects, err := fileStore.EnabledProjects(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(projects).To(HaveLen(1))
		Expect(projects[0]).To(MatchFields(IgnoreExtras, Fields{
			"Id":              Equal("1234"),
			"Name":            Equal("Cardiology Registry"),
			"ApiToken":        Equal("A1B2C3D4"),
			"IdentifierField": Equal("mrn"),
			"Event":           BeEmpty(),
		}))
		Expect(projects[0].FieldMaps).To(Equal([]projection.FieldMap{
			{Target: "EPIC#31000", Sources: []string{"consent"}},
			{Target: "EPIC#31001", Sources: []string{"color", "height"}},
		}))
	})

	It("fails when the file doesn't exist", func() {
		fileStore := settings.NewFileStore("test/fixtures/missing.json")

		_, err := fileStore.EnabledProjects(context.Background())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("NewStore", func() {
	var logger *zap.SugaredLogger

	BeforeEach(func() {
		logger = zap.NewNop().Sugar()
	})

	It("uses the projects file when configured", func() {
		result, err := settings.NewStore(settings.Config{ProjectsFile: "test/fixtures/projects.json"}, &store.Clients{}, logger)
		Expect(err).ToNot(HaveOccurred())
		Expect(result).To(BeAssignableToTypeOf(&settings.FileStore{}))
	})

	It("fails when no source is configured", func() {
		_, err := settings.NewStore(settings.Config{}, &store.Clients{}, logger)
		Expect(errors.Is(err, settings.ErrNotConfigured)).To(BeTrue())
	})
})
