package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nodebbs/internal/store"
)

var _ = Describe("User Model", func() {
	var db *store.Store

	BeforeEach(func() {
		var err error
		db, err = store.New(":memory:", true)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("CreateUser", func() {
		Context("with valid input", func() {
			It("creates a user successfully", func() {
				err := db.CreateUser("testuser", "password123")
				Expect(err).NotTo(HaveOccurred())

				user, err := db.FindUserByUsername("testuser")
				Expect(err).NotTo(HaveOccurred())
				Expect(user).NotTo(BeNil())
			})
		})

		Context("with a duplicate username", func() {
			It("returns an error", func() {
				_ = db.CreateUser("dupe", "pass")
				err := db.CreateUser("dupe", "pass")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			_ = db.CreateUser("validuser", "secretpass")
		})

		It("authenticates with correct credentials", func() {
			user, err := db.Authenticate("validuser", "secretpass")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("validuser"))
		})

		It("fails with incorrect password", func() {
			_, err := db.Authenticate("validuser", "wrongpass")
			Expect(err).To(MatchError(store.ErrInvalidPassword))
		})

		It("fails with unknown username", func() {
			_, err := db.Authenticate("ghostinthemachine", "pass")
			Expect(err).To(MatchError(store.ErrUserNotFound))
		})
	})

	Describe("RecordCall", func() {
		It("counts calls and stamps the last call", func() {
			Expect(db.CreateUser("caller", "secretpass")).To(Succeed())
			user, err := db.FindUserByUsername("caller")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.LastCallAt).To(BeNil())

			Expect(db.RecordCall(user)).To(Succeed())
			Expect(db.RecordCall(user)).To(Succeed())
			Expect(user.Calls).To(Equal(2))

			user, err = db.FindUserByUsername("caller")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Calls).To(Equal(2))
			Expect(user.LastCallAt).NotTo(BeNil())
		})
	})

	Describe("RenameUser", func() {
		It("moves the account to the new name", func() {
			Expect(db.CreateUser("oldname", "secretpass")).To(Succeed())
			Expect(db.RenameUser("oldname", "newname")).To(Succeed())

			_, err := db.FindUserByUsername("oldname")
			Expect(err).To(MatchError(store.ErrUserNotFound))
			_, err = db.Authenticate("newname", "secretpass")
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports a missing account", func() {
			Expect(db.RenameUser("nobody", "somebody")).To(MatchError(store.ErrUserNotFound))
		})
	})

	Describe("UpdatePassword", func() {
		It("replaces the password", func() {
			Expect(db.CreateUser("sysop", "oldsecret")).To(Succeed())
			Expect(db.UpdatePassword("sysop", "newsecret")).To(Succeed())

			_, err := db.Authenticate("sysop", "oldsecret")
			Expect(err).To(MatchError(store.ErrInvalidPassword))
			_, err = db.Authenticate("sysop", "newsecret")
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports a missing account", func() {
			Expect(db.UpdatePassword("nobody", "whatever")).To(MatchError(store.ErrUserNotFound))
		})
	})

	Describe("RemoveUser and ListUsers", func() {
		It("lists accounts by name and forgets removed ones", func() {
			Expect(db.CreateUser("zed", "secretpass")).To(Succeed())
			Expect(db.CreateUser("amy", "secretpass")).To(Succeed())

			users, err := db.ListUsers()
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].Username).To(Equal("amy"))

			Expect(db.RemoveUser("zed")).To(Succeed())
			Expect(db.RemoveUser("zed")).To(MatchError(store.ErrUserNotFound))

			users, err = db.ListUsers()
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
		})
	})
})
