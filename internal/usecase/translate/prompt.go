package translate

import (
	"fmt"
	"strings"
)

const promptTemplate = `Generate a MongoDB database query based on the following context of the database type, schema and sample data

I need the query for collection : %s

Assume I am going to invoke methods provided by the library %s
on the query dictionary returned by you

context :
%s

Question:
%s

Strictly return just the database query in json format based on the question and no other accompanying text.
Example question : list out all posts made by username 'p'
Generated query : {"username": "p"}
`

// BuildPrompt composes the instruction sent to the model.
func BuildPrompt(collection, library, profileText, question string) string {
	return fmt.Sprintf(promptTemplate,
		collection,
		strings.TrimSpace(library),
		profileText,
		strings.TrimSpace(question),
	)
}
