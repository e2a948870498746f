package catalog

import (
	"testing"

	"CatalogAPI/internal/model"
)

var blogModels = map[string]string{
	"Post": `
table: posts
attributes: [id, title, status, author_id, category_id, position, rating, published_at]
relations:
  author:
    model: User
    type: belongs_to
  category:
    model: Category
    type: belongs_to
  comments:
    model: Comment
    type: has_many
  approved_comments:
    model: Comment
    type: has_many
    where: .approved = true
  tags:
    model: Tag
    type: has_many
    through: PostTag
`,
	"User": `
table: users
attributes: [id, first_name, email, country_id]
relations:
  country:
    model: Country
    type: belongs_to
  profile:
    model: Profile
    type: has_one
  posts:
    model: Post
    type: has_many
    fk: author_id
`,
	"Profile": `
attributes: [id, user_id, bio]
`,
	"Country": `
table: countries
attributes: [id, name, code, region_id]
relations:
  region:
    model: Region
    type: belongs_to
`,
	"Region": `
attributes: [id, name]
`,
	"Category": `
table: categories
attributes: [id, name]
`,
	"Comment": `
attributes: [id, post_id, body, approved]
relations:
  post:
    model: Post
    type: belongs_to
`,
	"Tag": `
attributes: [id, name]
`,
	"Vote": `
table: votes
primary_keys: [post_id, user_id]
attributes: [post_id, user_id, position]
`,
	"PostTag": `
table: post_tags
attributes: [id, post_id, tag_id]
relations:
  post:
    model: Post
    type: belongs_to
  tag:
    model: Tag
    type: belongs_to
`,
}

func testSchema(t *testing.T) model.Schema {
	t.Helper()
	schema := model.Schema{}
	for name, src := range blogModels {
		m, err := model.ParseModel(name, []byte(src))
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		schema[name] = m
	}
	if err := schema.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	return schema
}

func mustModel(t *testing.T, schema model.Schema, name string) *model.Model {
	t.Helper()
	m, ok := schema.Model(name)
	if !ok {
		t.Fatalf("model %s missing", name)
	}
	return m
}

func mustCatalog(t *testing.T, schema model.Schema, def Definition) *Catalog {
	t.Helper()
	c, err := NewCatalog(schema, def)
	if err != nil {
		t.Fatalf("NewCatalog(%s): %v", def.Name, err)
	}
	return c
}
