package classifier

import "fmt"

const systemPrompt = `You are an advanced AI assistant specialized in a Salesforce Revenue Cloud product catalog.
Your primary task is to analyze the user's query and convert it into a structured JSON object
that corresponds to one of the defined intents.

Rules:
1. Strictly adhere to the provided intent and slot definitions.
2. If the user's query matches a defined intent, identify the intent and extract all relevant slot values.
3. If the user's query does not match any defined intent, or you are not reasonably confident, use the fallback intent.
4. Your response MUST be ONLY a JSON object with the following structure:
   {"intent": "INTENT_NAME_STRING", "slots": {"slot_name1": "value1"}}
   If there are no slots for an intent, or no slots were extracted, return an empty object for "slots": {}.
   Slot values must always be strings. Do NOT include any explanatory text before or after the JSON object.`

// buildUserPrompt embeds the serialized catalog and the query. The service is
// briefed with the full intent set on every call; it has no memory of past
// requests.
func buildUserPrompt(query, catalogDocument string) string {
	return fmt.Sprintf(`Intent definitions:
---
%s---

User's query: %q

Your JSON response:`, catalogDocument, query)
}
