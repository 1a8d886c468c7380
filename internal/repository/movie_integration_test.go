//go:build integration

package repository

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/user/moviebot/internal/model"
	"github.com/user/moviebot/internal/testutil"
)

var _ = Describe("MovieRepository against PostgreSQL", Ordered, func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo *MovieRepository
	)

	BeforeAll(func() {
		if !testutil.PostgresAvailable() {
			Skip("需要 docker 或 " + testutil.DatabaseURLEnv)
		}
		ctx = context.Background()

		dsn, stop, err := testutil.StartPostgres(ctx)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(stop)

		db, err = InitDB(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(AutoMigrate(db)).To(Succeed())
		repo = NewMovieRepository(db)
	})

	BeforeEach(func() {
		Expect(db.Exec("TRUNCATE movies").Error).To(Succeed())
	})

	insert := func(movies ...model.Movie) {
		_, err := repo.InsertBatch(ctx, movies)
		Expect(err).NotTo(HaveOccurred())
	}

	It("skips IDs that already exist", func() {
		n, err := repo.InsertBatch(ctx, []model.Movie{testutil.Movie(1, "Heat", 1995), testutil.Movie(2, "Ronin", 1998)})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))

		n, err = repo.InsertBatch(ctx, []model.Movie{testutil.Movie(2, "Ronin again", 1998)})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())

		m, err := repo.FindByID(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Title).To(Equal("Ronin"))
	})

	It("matches titles case-insensitively", func() {
		insert(testutil.Movie(27205, "Inception", 2010))

		id, ok, err := repo.FindIDByTitle(ctx, "inception")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(27205)))

		id, ok, err = repo.FindIDByTitle(ctx, "CEPT")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(27205)))
	})

	It("treats LIKE wildcards literally", func() {
		insert(testutil.Movie(1, "axb", 2000), testutil.Movie(2, "100 Wolf", 2020))

		_, ok, err := repo.FindIDByTitle(ctx, "a_b")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		_, ok, err = repo.FindIDByTitle(ctx, "100%")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		insert(testutil.Movie(3, "a_b", 2001))
		id, ok, err := repo.FindIDByTitle(ctx, "a_b")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(3)))
	})

	It("returns nil for a missing ID", func() {
		m, err := repo.FindByID(ctx, 404)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeNil())
	})

	It("keeps trending thresholds strict", func() {
		insert(
			testutil.Rated(testutil.Movie(1, "Borderline Rating", 2000), 8.0, 5000),
			testutil.Rated(testutil.Movie(2, "Borderline Votes", 2001), 9.0, 1000),
			testutil.Rated(testutil.Movie(3, "Just Over", 2002), 9.0, 1001),
			testutil.Rated(testutil.Movie(4, "Popular", 2003), 9.0, 40000),
			testutil.Rated(testutil.Movie(5, "Precise", 2004), 8.75, 3000),
			testutil.Movie(6, "Unrated", 2005),
		)

		rows, err := repo.Trending(ctx, 8.0, 1000, 5)
		Expect(err).NotTo(HaveOccurred())

		titles := make([]string, len(rows))
		for i, r := range rows {
			titles[i] = r.Title
		}
		Expect(titles).To(Equal([]string{"Popular", "Just Over", "Precise"}))
		Expect(rows[2].VoteAverage).To(Equal(8.75))
		Expect(rows[0].Year()).To(Equal("2003"))
	})

	It("lists indexable movies by vote count and skips NULL counts", func() {
		blank := testutil.Rated(testutil.Movie(3, "Blank", 2002), 7, 9000)
		blank.Overview = ""
		insert(
			testutil.Rated(testutil.Movie(1, "Small", 2000), 7, 100),
			testutil.Rated(testutil.Movie(2, "Big", 2001), 7, 20000),
			blank,
			testutil.Movie(4, "Unrated", 2003),
			testutil.Rated(testutil.Movie(5, "Too Few", 2004), 7, 50),
		)

		rows, err := repo.ListIndexable(ctx, 50, 10)
		Expect(err).NotTo(HaveOccurred())
		ids := make([]int64, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		Expect(ids).To(Equal([]int64{2, 1}))

		rows, err = repo.ListIndexable(ctx, 50, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Title).To(Equal("Big"))
	})

	It("reports the highest ID and zero for an empty table", func() {
		maxID, err := repo.MaxID(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(maxID).To(BeZero())

		insert(testutil.Movie(7, "Seven", 1995), testutil.Movie(680, "Pulp Fiction", 1994))
		maxID, err = repo.MaxID(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(maxID).To(Equal(int64(680)))
	})
})
