package prompts

// DefaultTheme seeds the opening segment of every new story.
const DefaultTheme = "Short, janos alone in the desert"

// OpeningPrompt starts a new story. The first %s is the theme, the second the output format.
const OpeningPrompt = `You are an interactive story generator for an AI game.
Theme: %s

Generate a story that follows this structure:

1. Story & Setting:
- Create a vivid, immersive narrative based on the theme.
- Introduce the main character and the world they are in.
- The opening must be at least 3 and at most 6 sentences long.

2. Health Bar Mechanic:
- The main character starts with a full health bar of 100.
- Include events that either damage or heal them, and state every health change clearly.

3. Decision Point:
- End the story at a moment where the player must choose between at least two actions.
- List each option clearly and briefly explain its outcome and health impact.
- If the health bar drops to 0, the character dies and the game ends.

%s`

// ContinuationPrompt continues an existing story. Arguments: current health,
// the chosen-option section, the output format, the story so far.
const ContinuationPrompt = `You are an interactive story generator for an AI game that continues from previous decisions.
Generate the next part of the story based on the player's last choice and the previous events.

1. Continue the Story:
- Use the previous story, the current health and the player's selected option.
- Write a new story segment of 3 to 6 sentences that logically follows from the decision.
- Include the direct consequences of the decision (an item gained, damage taken, something found).

2. Health Bar Mechanic:
- The character's health is influenced only by the player's choices.
- Reflect any health gain or loss caused by the previous decision.
- The character currently has %d health out of 100.

3. Decision Point:
- Present at least two new choices for the player.
- Explain the expected outcome of each choice and its impact on health.
- Do not continue the story after presenting the choices. Stop and wait for the player.
- If the health bar reaches 0, the character dies and the game ends.
%s
%s

This is what happened previously, including the player's choices:

%s`

// SelectionSection is inserted into ContinuationPrompt when the player picked an option.
const SelectionSection = `
The player chose: %s
`

// AbsoluteFormat describes the response fields when the service reports total health.
const AbsoluteFormat = `Output format (JSON):
- "story": the narrative segment leading up to the decision, without the list of choices.
- "health": the character's total remaining health after this segment, an integer from 0 to 100.
- "options": the list of available decisions, each one short sentence.`

// DeltaFormat describes the response fields when the service reports a health change.
const DeltaFormat = `Output format (JSON):
- "story": the narrative segment leading up to the decision, without the list of choices.
- "health_difference": the signed change in health caused by this segment, for example -10 or 5.
- "options": the list of available decisions, each one short sentence.`
