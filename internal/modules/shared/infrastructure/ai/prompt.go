package ai

// menuPrompt メニュー画像を dish,description,price のCSVに書き起こす指示
const menuPrompt = "only create a csv from this image with the columns: dish, description, price. " +
	"The price is numeric without currency symbol. Just give the csv file as output. " +
	"Your response should be a list of comma separated values, eg: `foo, bar, baz` or `foo,bar,baz`. " +
	"Remove commas if they are part of the value."

// menuSystemPrompt システムプロンプトを受け付けるプロバイダー向けの補足
const menuSystemPrompt = `You transcribe restaurant menu photos into CSV.
Output only CSV rows with exactly three columns: dish, description, price.
Do not add explanations or code fences.`
